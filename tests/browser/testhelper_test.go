package browser_test

import (
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"civicbriefs/internal/adapters/civicapi"
	"civicbriefs/internal/adapters/email"
	web "civicbriefs/internal/adapters/http"
	"civicbriefs/internal/adapters/http/perf"
	"civicbriefs/internal/adapters/storage"
	"civicbriefs/internal/adapters/storage/profile"
	"civicbriefs/internal/application/tabs"
	"civicbriefs/internal/testutil/civicstub"
)

// testApp holds the running dashboard, its stub backend and Playwright handles.
type testApp struct {
	BaseURL string
	Backend *civicstub.Backend
	Mailer  *email.NoopSender
	PW      *playwright.Playwright
	Browser playwright.Browser
}

// newTestApp starts a fully wired dashboard on a free port in front of a stub backend.
func newTestApp(t *testing.T, strategy tabs.Strategy) *testApp {
	t.Helper()

	backend := civicstub.New(t)

	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	collector := perf.NewCollector(1000)
	secret := []byte("browser-test-secret-0123456789abcdef")
	profiles, err := profile.NewSealedStore(profile.NewSQLiteStore(storage.NewTimedDB(db, collector, 0)), secret, profile.KeyToken)
	if err != nil {
		t.Fatalf("failed to create profile store: %v", err)
	}
	api, err := civicapi.New(civicapi.Config{BaseURL: backend.URL(), Recorder: collector})
	if err != nil {
		t.Fatalf("failed to create api client: %v", err)
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	mailer := email.NewNoopSender()
	app, err := web.NewServer(web.Config{
		Strategy:       strategy,
		CSRFKey:        []byte("0123456789abcdef0123456789abcdef"),
		TrustedOrigins: []string{fmt.Sprintf("127.0.0.1:%d", port), fmt.Sprintf("localhost:%d", port)},
		RateLimit:      1000,
	}, web.Deps{API: api, Profiles: profiles, Collector: collector, Mailer: mailer})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: app,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/login")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		app.Close()
		db.Close()
	})

	return &testApp{
		BaseURL: baseURL,
		Backend: backend,
		Mailer:  mailer,
		PW:      pw,
		Browser: browser,
	}
}

// newPage opens a page in a fresh browser context, so each page is its own profile.
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	ctx, err := a.Browser.NewContext()
	if err != nil {
		t.Fatalf("failed to create context: %v", err)
	}
	page, err := ctx.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { ctx.Close() })
	return page
}

// visit navigates and fails the test on error.
func (a *testApp) visit(t *testing.T, page playwright.Page, path string) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + path); err != nil {
		t.Fatalf("failed to navigate to %s: %v", path, err)
	}
}

// login signs in through the login form and waits for the dashboard.
func (a *testApp) login(t *testing.T, page playwright.Page, email, password string) {
	t.Helper()
	a.visit(t, page, "/login")
	if err := page.Locator("#email").Fill(email); err != nil {
		t.Fatalf("failed to fill email: %v", err)
	}
	if err := page.Locator("#password").Fill(password); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("#login-form button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	waitFor(t, page, "#logout-btn")
}

// waitFor waits until selector is visible.
func waitFor(t *testing.T, page playwright.Page, selector string) {
	t.Helper()
	if err := page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("%s did not appear: %v", selector, err)
	}
}

// click presses the element matching selector.
func click(t *testing.T, page playwright.Page, selector string) {
	t.Helper()
	if err := page.Locator(selector).Click(); err != nil {
		t.Fatalf("failed to click %s: %v", selector, err)
	}
}

// text returns the text content of selector.
func text(t *testing.T, page playwright.Page, selector string) string {
	t.Helper()
	s, err := page.Locator(selector).TextContent()
	if err != nil {
		t.Fatalf("failed to read %s: %v", selector, err)
	}
	return s
}

package view

import (
	"encoding/json"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"civicbriefs/internal/application/actions"
	"civicbriefs/internal/domain/admin"
	"civicbriefs/internal/domain/capsule"
	"civicbriefs/internal/domain/chat"
	"civicbriefs/internal/domain/plan"
	"civicbriefs/internal/domain/quiz"
	"civicbriefs/internal/domain/subscription"
)

func decodeCapsule(t *testing.T, raw string) capsule.Capsule {
	t.Helper()
	var c capsule.Capsule
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	c.Normalize()
	return c
}

func childCount(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

// TestCapsule_EmptyPlaceholder verifies both renderings show exactly one placeholder and no cards.
func TestCapsule_EmptyPlaceholder(t *testing.T) {
	tests := []struct {
		name   string
		render func(capsule.Capsule, *html.Node)
		want   string
	}{
		{"compact", CompactCapsule, CompactEmptyMessage},
		{"rich", RichCapsule, RichEmptyMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := Container("capsule")
			Add(box, Wrap("div", "stale", "class", "card"))
			tt.render(capsule.Capsule{}, box)
			if childCount(box) != 1 {
				t.Fatalf("children = %d, want 1", childCount(box))
			}
			if !HasClass(box.FirstChild, "no-data") || TextContent(box) != tt.want {
				t.Errorf("placeholder = %q, want %q", TextContent(box), tt.want)
			}
			if n := len(Find(box, ByClass("card"))); n != 0 {
				t.Errorf("cards = %d, want 0", n)
			}
		})
	}
}

// TestCompactCapsule_Limits verifies truncation, tag and PYQ limits, and score formatting.
func TestCompactCapsule_Limits(t *testing.T) {
	long := strings.Repeat("é", 350)
	c := decodeCapsule(t, `{"date":"2026-10-19","items":[{"title":"T","url":"https://x.test","source":"PIB",
		"summary":"`+long+`",
		"topics":[{"paper":"GS2","topic":"Polity","score":0.8345},{"paper":"a","topic":"1","score":1},{"paper":"b","topic":"2","score":1},
		          {"paper":"c","topic":"3","score":1},{"paper":"d","topic":"4","score":1},{"paper":"e","topic":"5","score":1},{"paper":"f","topic":"6","score":1}],
		"pyqs":[{"year":2019,"paper":"GS2","question":"q1"},{"year":2018,"paper":"GS2","question":"q2"},{"year":2017,"paper":"GS2","question":"q3"},
		        {"year":2016,"paper":"GS2","question":"q4"},{"year":2015,"paper":"GS2","question":"q5"}]}]}`)
	box := Container("capsule")
	CompactCapsule(c, box)

	summary := Find(box, ByClass("summary"))
	if len(summary) != 1 || len([]rune(TextContent(summary[0]))) != capsule.CompactSummaryLimit {
		t.Errorf("summary runes = %d, want %d", len([]rune(TextContent(summary[0]))), capsule.CompactSummaryLimit)
	}
	chips := Find(box, ByClass("chip"))
	if len(chips) != capsule.MaxTopicTags {
		t.Errorf("chips = %d, want %d", len(chips), capsule.MaxTopicTags)
	}
	if got := TextContent(chips[0]); got != "GS2: Polity (0.83)" {
		t.Errorf("chip = %q, want %q", got, "GS2: Polity (0.83)")
	}
	pyqs := Find(box, ByClass("pyq"))
	if len(pyqs) != capsule.CompactPyqLimit {
		t.Errorf("pyqs = %d, want %d", len(pyqs), capsule.CompactPyqLimit)
	}
	if got := TextContent(pyqs[0]); got != "(2019 GS2) q1" {
		t.Errorf("pyq = %q", got)
	}
}

// TestRichCapsule verifies the header, full summary, and three PYQs.
func TestRichCapsule(t *testing.T) {
	long := strings.Repeat("a", 400)
	c := decodeCapsule(t, `{"date":"2026-10-19","items":[
		{"title":"T","url":"https://x.test","summary":"`+long+`","topics":[{"paper":"GS2","topic":"Polity","score":0.8345}],
		 "pyqs":[{"year":2019,"question":"q1"},{"year":2018,"question":"q2"},{"year":2017,"question":"q3"},{"year":2016,"question":"q4"}]},
		{"title":"U","url":"https://y.test"}]}`)
	box := Container("capsule")
	RichCapsule(c, box)

	if h := Find(box, ByTag("h3")); len(h) != 1 || TextContent(h[0]) != "Daily UPSC Capsule - 2026-10-19" {
		t.Errorf("header = %v", h)
	}
	if !strings.Contains(TextContent(box), "2 news items with syllabus mapping") {
		t.Error("missing item count")
	}
	summaries := Find(box, ByClass("news-summary"))
	if TextContent(summaries[0]) != long || TextContent(summaries[1]) != NoSummary {
		t.Error("rich summaries should be full text or the no-summary message")
	}
	if tags := Find(box, ByClass("topic-tag")); TextContent(tags[0]) != "GS2: Polity (0.83)" {
		t.Errorf("tag = %q", TextContent(tags[0]))
	}
	if li := Find(box, ByTag("li")); len(li) != capsule.RichPyqLimit || TextContent(li[0]) != "q1 (2019)" {
		t.Errorf("pyqs = %d", len(li))
	}
}

// TestCapsule_Idempotent verifies rendering twice yields the same markup.
func TestCapsule_Idempotent(t *testing.T) {
	c := decodeCapsule(t, `{"items":[{"title":"T","url":"https://x.test","summary":"s"}]}`)
	box := Container("capsule")
	CompactCapsule(c, box)
	first, _ := RenderChildren(box)
	CompactCapsule(c, box)
	second, _ := RenderChildren(box)
	if first != second {
		t.Errorf("second render differs:\n%s\n%s", first, second)
	}
}

// TestCapsule_UnsafeLinks verifies non-http links and markup in text are neutralised.
func TestCapsule_UnsafeLinks(t *testing.T) {
	c := decodeCapsule(t, `{"items":[{"title":"<img src=x onerror=alert(1)>","url":"javascript:alert(1)"}]}`)
	box := Container("capsule")
	CompactCapsule(c, box)
	out, _ := RenderChildren(box)
	if strings.Contains(out, "javascript:") || strings.Contains(out, "<img") {
		t.Errorf("unsafe output: %s", out)
	}
}

// TestQuiz_Cards verifies radio naming, lettering, context truncation, and hidden fields.
func TestQuiz_Cards(t *testing.T) {
	q := &quiz.Quiz{Name: "Polity Drill", Questions: []quiz.Question{
		{Text: "First?", Context: strings.Repeat("c", 250), Options: []string{"x", "y", "z"}},
		{Text: "Second?", Options: []string{"p", "q"}},
	}}
	box := Container("quiz-container")
	Quiz(q, box)

	if v, _ := Attr(box, "data-quiz-name"); v != "Polity Drill" {
		t.Errorf("data-quiz-name = %q", v)
	}
	cards := Find(box, ByClass("quiz-card"))
	if len(cards) != 2 {
		t.Fatalf("cards = %d, want 2", len(cards))
	}
	radios := Find(cards[1], ByTag("input"))
	for oi, r := range radios {
		name, _ := Attr(r, "name")
		val, _ := Attr(r, "value")
		if name != "q1" || val != []string{"0", "1"}[oi] {
			t.Errorf("radio %d = name %q value %q", oi, name, val)
		}
	}
	labels := Find(cards[0], ByTag("label"))
	if TextContent(labels[2]) != "C. z" {
		t.Errorf("label = %q, want %q", TextContent(labels[2]), "C. z")
	}
	ctx := Find(cards[0], ByClass("muted-sm"))
	if len(ctx) != 1 || TextContent(ctx[0]) != "Context: "+strings.Repeat("c", 200) {
		t.Error("context should be truncated to 200 runes")
	}
	if len(Find(cards[1], ByClass("muted-sm"))) != 0 {
		t.Error("question without context should have no context line")
	}
	hidden := map[string]string{}
	for _, in := range Find(box, ByTag("input")) {
		if typ, _ := Attr(in, "type"); typ == "hidden" {
			name, _ := Attr(in, "name")
			hidden[name], _ = Attr(in, "value")
		}
	}
	if hidden[FieldQuizName] != "Polity Drill" || hidden[FieldQuestionCount] != "2" {
		t.Errorf("hidden = %v", hidden)
	}
}

// TestQuiz_Empty verifies nil and empty quizzes render the placeholder.
func TestQuiz_Empty(t *testing.T) {
	for _, q := range []*quiz.Quiz{nil, {Name: "x"}} {
		box := Container("quiz-container")
		Quiz(q, box)
		if childCount(box) != 1 || TextContent(box) != QuizEmptyMessage {
			t.Errorf("render = %q", TextContent(box))
		}
	}
}

// TestUsers_DeactivateOnlyForUsers verifies the role gate on the deactivate control.
func TestUsers_DeactivateOnlyForUsers(t *testing.T) {
	box := Container("admin-users")
	Users([]admin.User{
		{ID: "1", FullName: "Admin", Role: "admin", IsActive: true},
		{ID: "2", FullName: "Asha", Role: "user"},
	}, box)
	rows := Find(box, ByClass("user-item"))
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if n := len(Find(rows[0], ByTag("form"))); n != 1 {
		t.Errorf("admin forms = %d, want 1", n)
	}
	forms := Find(rows[1], ByTag("form"))
	if len(forms) != 2 {
		t.Fatalf("user forms = %d, want 2", len(forms))
	}
	if action, _ := Attr(forms[1], "action"); action != "/actions/admin/deactivate-user/2" {
		t.Errorf("action = %q", action)
	}
	if !strings.Contains(TextContent(rows[1]), "Inactive") || !strings.Contains(TextContent(rows[1]), "Not Subscribed") {
		t.Errorf("labels = %q", TextContent(rows[1]))
	}
}

// TestAdminLists_Empty verifies the admin placeholders.
func TestAdminLists_Empty(t *testing.T) {
	users := Container("admin-users")
	Users(nil, users)
	reqs := Container("admin-requests")
	Requests(nil, reqs)
	if TextContent(users) != NoUsersFound || TextContent(reqs) != NoPendingRequests {
		t.Errorf("placeholders = %q, %q", TextContent(users), TextContent(reqs))
	}
}

// TestRequests_Forms verifies approve and reject forms address the request ID.
func TestRequests_Forms(t *testing.T) {
	box := Container("admin-requests")
	Requests([]admin.SubscriptionRequest{{ID: "7", FullName: "Ravi", Email: "r@x.test", Reason: "prelims"}}, box)
	var actions []string
	for _, f := range Find(box, ByTag("form")) {
		a, _ := Attr(f, "action")
		actions = append(actions, a)
	}
	want := []string{"/actions/admin/approve-subscription/7", "/actions/admin/reject-subscription/7"}
	if strings.Join(actions, ",") != strings.Join(want, ",") {
		t.Errorf("actions = %v, want %v", actions, want)
	}
}

// TestChart_Geometry verifies bar placement and clamping.
func TestChart_Geometry(t *testing.T) {
	box := Container("quiz-chart")
	Chart([]quiz.HistoryEntry{{Score: 50}, {Score: 150}, {Score: -5}}, 420, 180, box)

	bars := Find(box, ByClass("bar"))
	if len(bars) != 3 {
		t.Fatalf("bars = %d, want 3", len(bars))
	}
	bw := BarWidth(420, 3) // max(6, 370/3 - 4) = 119
	if bw != 119 {
		t.Errorf("BarWidth = %d, want 119", bw)
	}
	tests := []struct {
		i    int
		x, y string
	}{
		{0, "32", "85"},
		{1, "155", "20"},
		{2, "278", "150"},
	}
	for _, tt := range tests {
		x, _ := Attr(bars[tt.i], "x")
		y, _ := Attr(bars[tt.i], "y")
		if x != tt.x || y != tt.y {
			t.Errorf("bar %d = (%s,%s), want (%s,%s)", tt.i, x, y, tt.x, tt.y)
		}
	}
	if n := len(Find(box, ByClass("grid"))); n != 3 {
		t.Errorf("gridlines = %d, want 3", n)
	}
	text := TextContent(box)
	if !strings.Contains(text, "Score") || !strings.Contains(text, "Tests") {
		t.Error("missing axis labels")
	}
}

// TestChart_Empty verifies an empty history still draws axes and no bars.
func TestChart_Empty(t *testing.T) {
	box := Container("quiz-chart")
	Chart(nil, 420, 180, box)
	if len(Find(box, ByClass("bar"))) != 0 || len(Find(box, ByClass("axes"))) != 1 {
		t.Error("want axes and no bars")
	}
	if BarWidth(420, 0) != 366 {
		t.Errorf("BarWidth(n=0) = %d, want 366", BarWidth(420, 0))
	}
}

// TestChatExchange_EscapesRawHTML verifies markdown renders and raw HTML does not.
func TestChatExchange_EscapesRawHTML(t *testing.T) {
	box := Container("chat-out")
	ChatExchange("q?", chat.Answer{Response: "**bold** <script>alert(1)</script>"}, box)
	if len(Find(box, ByTag("script"))) != 0 {
		t.Error("script element rendered")
	}
	if len(Find(box, ByTag("strong"))) < 2 {
		t.Error("markdown bold not rendered")
	}
}

// TestChatExchange_Fallback verifies the fallback answer and PYQ controls.
func TestChatExchange_Fallback(t *testing.T) {
	box := Container("chat-out")
	ChatExchange("q?", chat.Answer{Pyqs: []capsule.Pyq{{ID: "11", Year: "2019", Paper: "GS2", Question: "Discuss."}}}, box)
	if !strings.Contains(TextContent(box), chat.FallbackResponse) {
		t.Error("missing fallback response")
	}
	forms := Find(box, ByTag("form"))
	if len(forms) != 1 {
		t.Fatalf("forms = %d, want 1", len(forms))
	}
	if a, _ := Attr(forms[0], "action"); a != "/actions/chat/pyq/11" {
		t.Errorf("action = %q", a)
	}
}

// TestPlan verifies the empty message and week cards.
func TestPlan(t *testing.T) {
	box := Container("plan")
	Plan(plan.Envelope{}, box)
	if TextContent(box) != plan.EmptyMessage {
		t.Errorf("empty = %q", TextContent(box))
	}

	var env plan.Envelope
	raw := `{"plan":{"weeks":[{"week":1,"hours":12,"tasks":["a","b"]}],"feedback_summary":{"tests_considered":2,"average_score":72.5,"weak_topics":["Economy"]}}}`
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatal(err)
	}
	Plan(env, box)
	if got := TextContent(Find(box, ByClass("plan-summary"))[0]); got != "Tests: 2 | Avg Score: 72.5 | Weak: Economy" {
		t.Errorf("summary = %q", got)
	}
	cards := Find(box, ByClass("week-card"))
	if len(cards) != 1 || !strings.HasPrefix(TextContent(cards[0]), "Week 1 — Hours: 12") {
		t.Errorf("week card = %q", TextContent(cards[0]))
	}
	if len(Find(cards[0], ByTag("li"))) != 2 {
		t.Error("want two tasks")
	}
}

// TestSubscribers verifies one row per subscriber with its channel.
func TestSubscribers(t *testing.T) {
	box := Container("subs-table")
	rows := subscription.Rows(
		&subscription.List{Subscribers: []subscription.Subscriber{{Email: "a@x.test", Name: "A"}}},
		&subscription.List{Subscribers: []subscription.Subscriber{{Email: "b@x.test"}}},
	)
	Subscribers(rows, box)
	trs := Find(box, ByClass("sub-row"))
	if len(trs) != 2 {
		t.Fatalf("rows = %d, want 2", len(trs))
	}
	if got := TextContent(trs[1]); got != "b@x.testweekly" {
		t.Errorf("row = %q", got)
	}
}

// TestStatus verifies the status panel carries the text verbatim.
func TestStatus(t *testing.T) {
	box := Container("util-out")
	Status(actions.Status{Text: "{\n  \"detail\": \"x\"\n}"}, box)
	pre := Find(box, ByTag("pre"))
	if len(pre) != 1 || !HasClass(pre[0], "error") || !strings.Contains(TextContent(pre[0]), `"detail"`) {
		t.Errorf("status = %v", pre)
	}
}

// TestStampForms verifies POST forms get exactly one token field.
func TestStampForms(t *testing.T) {
	root := El("div")
	Add(root, postForm("/a", "A", ""), El("form", "method", "get", "action", "/b"))
	StampForms(root, "gorilla.csrf.Token", "tok")
	StampForms(root, "gorilla.csrf.Token", "tok")
	forms := Find(root, ByTag("form"))
	count := func(f *html.Node) int {
		n := 0
		for _, in := range Find(f, ByTag("input")) {
			if name, _ := Attr(in, "name"); name == "gorilla.csrf.Token" {
				n++
			}
		}
		return n
	}
	if count(forms[0]) != 1 || count(forms[1]) != 0 {
		t.Errorf("token fields = %d, %d, want 1, 0", count(forms[0]), count(forms[1]))
	}
}

// TestCapsuleEmail verifies the mailed document wraps the rich rendering.
func TestCapsuleEmail(t *testing.T) {
	c := decodeCapsule(t, `{"date":"2026-10-19","items":[{"title":"T","url":"https://x.test"}]}`)
	out, err := CapsuleEmail(c)
	if err != nil {
		t.Fatalf("CapsuleEmail: %v", err)
	}
	if !strings.HasPrefix(out, "<!DOCTYPE html>") || !strings.Contains(out, "Daily UPSC Capsule - 2026-10-19") {
		t.Errorf("email = %s", out)
	}
}

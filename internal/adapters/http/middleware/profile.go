package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"civicbriefs/internal/application/toast"
)

type contextKey string

const profileContextKey contextKey = "profile"

// ProfileCookieName holds the opaque profile identifier.
const ProfileCookieName = "cb_profile"

// profileMaxAge keeps the profile for a year of inactivity; stored state has no TTL of its own.
const profileMaxAge = 365 * 24 * time.Hour

// ProfileEnsurer creates or touches a profile row.
type ProfileEnsurer interface {
	Ensure(ctx context.Context, profileID string) error
}

// Profile returns middleware that binds every request to a browser profile.
// A missing or malformed cookie is replaced with a fresh UUID.
// POST: ProfileIDFromContext returns a valid UUID for every downstream handler
func Profile(store ProfileEnsurer, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isStatic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			id := ""
			if c, err := r.Cookie(ProfileCookieName); err == nil {
				if parsed, err := uuid.Parse(c.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     ProfileCookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(profileMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
				slog.Info("auth_event", "event", "profile_created", "profile_id", id)
			}
			if err := store.Ensure(r.Context(), id); err != nil {
				slog.Error("internal_error", "operation", "ensure_profile", "error", err.Error())
				http.Error(w, "internal server error", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithProfileID(r.Context(), id)))
		})
	}
}

// WithProfileID returns ctx carrying profile id.
func WithProfileID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, profileContextKey, id)
}

// ProfileIDFromContext returns the profile bound by Profile.
func ProfileIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(profileContextKey).(string)
	return id, ok && id != ""
}

// Toasts returns middleware that gives every request an empty toast tray.
func Toasts(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(toast.WithTray(r.Context(), &toast.Tray{})))
	})
}

func isStatic(path string) bool {
	return strings.HasPrefix(path, "/static/")
}

package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"civicbriefs/internal/adapters/http/middleware"
	"civicbriefs/internal/adapters/storage/profile"
	"civicbriefs/internal/application/toast"
)

// redirectWithToasts stores the request's toasts on the profile and redirects.
// The next full page render shows them.
func (s *Server) redirectWithToasts(w http.ResponseWriter, r *http.Request, to string) {
	s.keepToasts(r)
	http.Redirect(w, r, to, http.StatusSeeOther)
}

func (s *Server) keepToasts(r *http.Request) {
	all := toast.FromContext(r.Context()).All()
	id, ok := middleware.ProfileIDFromContext(r.Context())
	if len(all) == 0 || !ok {
		return
	}
	raw, err := json.Marshal(all)
	if err != nil {
		slog.Error("flash_write_failed", "profile_id", id, "error", err)
		return
	}
	if err := s.deps.Profiles.Set(r.Context(), id, profile.KeyFlash, string(raw)); err != nil {
		slog.Error("flash_write_failed", "profile_id", id, "error", err)
	}
}

// restoreToasts moves stored toasts into the request's tray, oldest first.
func (s *Server) restoreToasts(r *http.Request) {
	id, ok := middleware.ProfileIDFromContext(r.Context())
	if !ok {
		return
	}
	raw, err := s.deps.Profiles.Get(r.Context(), id, profile.KeyFlash)
	if errors.Is(err, profile.ErrNotFound) {
		return
	}
	if err != nil {
		slog.Error("flash_read_failed", "profile_id", id, "error", err)
		return
	}
	if err := s.deps.Profiles.Delete(r.Context(), id, profile.KeyFlash); err != nil {
		slog.Error("flash_write_failed", "profile_id", id, "error", err)
	}
	var kept []toast.Toast
	if err := json.Unmarshal([]byte(raw), &kept); err != nil {
		slog.Warn("flash_discarded", "profile_id", id, "error", err)
		return
	}
	tray := toast.FromContext(r.Context())
	for _, t := range kept {
		tray.Push(t.Level, t.Message)
	}
}

package chat_test

import (
	"testing"

	"civicbriefs/internal/domain/chat"
)

// TestNewAskRequest_RejectsBlank verifies blank questions never become requests.
func TestNewAskRequest_RejectsBlank(t *testing.T) {
	for _, q := range []string{"", "   ", "\n\t"} {
		if _, err := chat.NewAskRequest(q, "sid"); err != chat.ErrEmptyQuestion {
			t.Errorf("NewAskRequest(%q) err = %v, want ErrEmptyQuestion", q, err)
		}
	}
	req, err := chat.NewAskRequest("  what is GST?  ", "sid-1")
	if err != nil {
		t.Fatalf("NewAskRequest: %v", err)
	}
	if req.Question != "what is GST?" || req.SessionID != "sid-1" {
		t.Errorf("req = %+v", req)
	}
}

// TestAnswer_Normalize fills the fallback text.
func TestAnswer_Normalize(t *testing.T) {
	a := chat.Answer{}
	a.Normalize()
	if a.Response != chat.FallbackResponse {
		t.Errorf("Response = %q", a.Response)
	}
	if a.Pyqs == nil {
		t.Error("Pyqs should be non-nil")
	}
}

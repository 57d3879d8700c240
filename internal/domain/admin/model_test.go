package admin_test

import (
	"encoding/json"
	"testing"

	"civicbriefs/internal/domain/admin"
)

// TestUser_Labels verifies label helpers and deactivate gating.
func TestUser_Labels(t *testing.T) {
	var users []admin.User
	body := `[{"id":1,"full_name":"A","email":"a@x.in","role":"user","is_active":true,"subscribed":1},
	          {"id":"2","full_name":"B","email":"b@x.in","role":"admin","is_active":false,"subscribed":false}]`
	if err := json.Unmarshal([]byte(body), &users); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if users[0].ID != "1" || users[1].ID != "2" {
		t.Errorf("ids = %q %q", users[0].ID, users[1].ID)
	}
	if !users[0].CanDeactivate() || users[1].CanDeactivate() {
		t.Error("only role user may be deactivated")
	}
	if users[0].StatusLabel() != "Active" || users[1].StatusLabel() != "Inactive" {
		t.Error("unexpected status labels")
	}
	if users[0].SubscriptionLabel() != "Subscribed" || users[1].SubscriptionLabel() != "Not Subscribed" {
		t.Error("unexpected subscription labels")
	}
	if got := admin.CountSubscribed(users); got != 1 {
		t.Errorf("CountSubscribed = %d, want 1", got)
	}
}

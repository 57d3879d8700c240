package account_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"civicbriefs/internal/domain/account"
)

// TestIsPrivileged tests the role gate used for administrative controls.
func TestIsPrivileged(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"admin", true},
		{"manager", true},
		{"user", false},
		{"", false},
		{"Admin", false},
		{"superuser", false},
	}
	for _, tt := range tests {
		if got := account.IsPrivileged(tt.role); got != tt.want {
			t.Errorf("IsPrivileged(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}

// TestLoginRequest_Validate tests validation of the login form.
func TestLoginRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     account.LoginRequest
		wantErr error
	}{
		{"valid", account.LoginRequest{Email: " a@civic.in ", Password: "pw"}, nil},
		{"empty email", account.LoginRequest{Password: "pw"}, account.ErrEmptyEmail},
		{"bad email", account.LoginRequest{Email: "nope", Password: "pw"}, account.ErrInvalidEmail},
		{"display name email", account.LoginRequest{Email: "Bob <b@civic.in>", Password: "pw"}, account.ErrInvalidEmail},
		{"empty password", account.LoginRequest{Email: "a@civic.in"}, account.ErrEmptyPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.req.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestSignupRequest_Validate tests validation of the signup form.
func TestSignupRequest_Validate(t *testing.T) {
	r := account.SignupRequest{Email: "a@civic.in", FullName: "  ", Password: "pw"}
	if err := r.Validate(); err != account.ErrEmptyFullName {
		t.Errorf("Validate() = %v, want ErrEmptyFullName", err)
	}
	r.FullName = "Asha"
	if err := r.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

// TestSubscriptionRequestCreate_Validate requires a reason.
func TestSubscriptionRequestCreate_Validate(t *testing.T) {
	r := account.SubscriptionRequestCreate{Email: "a@civic.in", FullName: "Asha"}
	if err := r.Validate(); err != account.ErrEmptyReason {
		t.Errorf("Validate() = %v, want ErrEmptyReason", err)
	}
	r.Reason = "Preparing for prelims"
	if err := r.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

// TestResetPasswordRequest_Validate requires token and password.
func TestResetPasswordRequest_Validate(t *testing.T) {
	if err := (&account.ResetPasswordRequest{NewPassword: "x"}).Validate(); err != account.ErrEmptyToken {
		t.Errorf("Validate() = %v, want ErrEmptyToken", err)
	}
	if err := (&account.ResetPasswordRequest{Token: "t"}).Validate(); err != account.ErrEmptyPassword {
		t.Errorf("Validate() = %v, want ErrEmptyPassword", err)
	}
}

// TestDecodeIdentity reads claims without verifying the signature.
func TestDecodeIdentity(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":   "42",
		"email": "asha@civic.in",
		"role":  "manager",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-other-secret"))
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}

	id, err := account.DecodeIdentity(token)
	if err != nil {
		t.Fatalf("DecodeIdentity: %v", err)
	}
	if id.Email != "asha@civic.in" || id.Role != "manager" || id.Subject != "42" {
		t.Errorf("identity = %+v", id)
	}
}

// TestDecodeIdentity_Malformed never panics on junk.
func TestDecodeIdentity_Malformed(t *testing.T) {
	if _, err := account.DecodeIdentity(""); err != account.ErrNoCredential {
		t.Errorf("empty: err = %v, want ErrNoCredential", err)
	}
	for _, junk := range []string{"abc", "a.b", "a.b.c", "x.!!!.y", "eyJhbGciOiJIUzI1NiJ9.bm90LWpzb24.sig"} {
		if _, err := account.DecodeIdentity(junk); err != account.ErrMalformedToken {
			t.Errorf("DecodeIdentity(%q) err = %v, want ErrMalformedToken", junk, err)
		}
	}
}

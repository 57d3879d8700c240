package account

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"civicbriefs/internal/domain/schema"
)

// Max length constants for user-editable fields.
const (
	MaxEmailLength    = 254
	MaxFullNameLength = 120
	MaxReasonLength   = 1000
)

// Role constants
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleUser    = "user"
)

// PrivilegedRoles are the roles that see administrative controls.
var PrivilegedRoles = []string{RoleAdmin, RoleManager}

// Domain errors
var (
	ErrEmptyEmail     = errors.New("email cannot be empty")
	ErrInvalidEmail   = errors.New("email address is not valid")
	ErrEmptyPassword  = errors.New("password cannot be empty")
	ErrEmptyFullName  = errors.New("full name cannot be empty")
	ErrEmptyReason    = errors.New("reason cannot be empty")
	ErrEmptyToken     = errors.New("reset token cannot be empty")
	ErrNoCredential   = errors.New("no credential")
	ErrMalformedToken = errors.New("credential is not a readable token")
)

// IsPrivileged reports whether role may see administrative controls.
// Comparison is exact and case-sensitive.
func IsPrivileged(role string) bool {
	for _, r := range PrivilegedRoles {
		if role == r {
			return true
		}
	}
	return false
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the login form before any network call.
// PRE: none
// POST: Returns nil if email is well-formed and password is non-empty
func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if r.Password == "" {
		return ErrEmptyPassword
	}
	return nil
}

// TokenResponse is the login reply.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Role        string `json:"role"`
}

// SignupRequest is the body of POST /users/signup.
type SignupRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// Validate checks the signup form.
// PRE: none
// POST: Returns nil if all fields are present and email is well-formed
func (r *SignupRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if r.FullName == "" {
		return ErrEmptyFullName
	}
	if len(r.FullName) > MaxFullNameLength {
		return errors.New("full name cannot exceed 120 characters")
	}
	if r.Password == "" {
		return ErrEmptyPassword
	}
	return nil
}

// SubscriptionRequestCreate is the body of POST /auth/request-subscription.
type SubscriptionRequestCreate struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Reason   string `json:"reason"`
}

// Validate checks the request-access form.
func (r *SubscriptionRequestCreate) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Reason = strings.TrimSpace(r.Reason)
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if r.FullName == "" {
		return ErrEmptyFullName
	}
	if r.Reason == "" {
		return ErrEmptyReason
	}
	if len(r.Reason) > MaxReasonLength {
		return errors.New("reason cannot exceed 1000 characters")
	}
	return nil
}

// ForgotPasswordRequest is the body of POST /auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// Validate checks the email address.
func (r *ForgotPasswordRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validateEmail(r.Email)
}

// ResetPasswordRequest is the body of POST /auth/reset-password.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// Validate checks the reset form.
func (r *ResetPasswordRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		return ErrEmptyToken
	}
	if r.NewPassword == "" {
		return ErrEmptyPassword
	}
	return nil
}

// Me is the server's view of the signed-in user from GET /users/me.
type Me struct {
	ID       schema.Text `json:"id"`
	Email    string      `json:"email"`
	FullName string      `json:"full_name"`
	Role     string      `json:"role"`
}

// Identity is what the dashboard can read from a credential without the server.
type Identity struct {
	Subject string
	Email   string
	Role    string
}

// identityClaims mirrors the claims the backend embeds in its access tokens.
type identityClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// DecodeIdentity reads the claims embedded in a credential for display.
// The signature is not verified; the server remains the authority on validity.
// PRE: none
// POST: Returns ErrNoCredential for an empty credential and ErrMalformedToken
// for anything that is not a three-part JWT with a JSON payload
func DecodeIdentity(credential string) (Identity, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return Identity{}, ErrNoCredential
	}
	var claims identityClaims
	if _, _, err := jwt.NewParser().ParseUnverified(credential, &claims); err != nil {
		return Identity{}, ErrMalformedToken
	}
	return Identity{Subject: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmptyEmail
	}
	if len(email) > MaxEmailLength {
		return errors.New("email cannot exceed 254 characters")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

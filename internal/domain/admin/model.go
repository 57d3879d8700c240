package admin

import "civicbriefs/internal/domain/schema"

// RoleUser is the only role an administrator may deactivate from the list.
const RoleUser = "user"

// User is a managed account as listed by /admin/users.
type User struct {
	ID         schema.Text `json:"id"`
	FullName   string      `json:"full_name"`
	Email      string      `json:"email"`
	Role       string      `json:"role"`
	IsActive   schema.Flag `json:"is_active"`
	Subscribed schema.Flag `json:"subscribed"`
}

// CanDeactivate reports whether the deactivate control is offered for u.
func (u User) CanDeactivate() bool {
	return u.Role == RoleUser
}

// StatusLabel is "Active" or "Inactive".
func (u User) StatusLabel() string {
	if u.IsActive {
		return "Active"
	}
	return "Inactive"
}

// SubscriptionLabel is "Subscribed" or "Not Subscribed".
func (u User) SubscriptionLabel() string {
	if u.Subscribed {
		return "Subscribed"
	}
	return "Not Subscribed"
}

// SubscriptionRequest is a pending request awaiting approval.
type SubscriptionRequest struct {
	ID       schema.Text `json:"id"`
	FullName string      `json:"full_name"`
	Email    string      `json:"email"`
	Reason   string      `json:"reason"`
	Status   string      `json:"status"`
}

// CountSubscribed returns how many users are subscribed.
func CountSubscribed(users []User) int {
	n := 0
	for _, u := range users {
		if u.Subscribed {
			n++
		}
	}
	return n
}

// Message is the generic {"message": ...} acknowledgement.
type Message struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

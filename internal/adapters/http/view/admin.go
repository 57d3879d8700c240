package view

import (
	"net/url"

	"golang.org/x/net/html"

	"civicbriefs/internal/domain/admin"
)

// Admin list empty messages.
const (
	NoPendingRequests = "No pending requests"
	NoUsersFound      = "No users found"
)

// AdminActionPath is the dashboard route for an admin action on entity id.
func AdminActionPath(action, id string) string {
	return "/actions/admin/" + action + "/" + url.PathEscape(id)
}

// Users renders one row per user with inline toggle and deactivate forms.
// POST: deactivate is offered only for role user
func Users(users []admin.User, container *html.Node) {
	if len(users) == 0 {
		Replace(container, placeholder(NoUsersFound))
		return
	}
	rows := make([]*html.Node, 0, len(users))
	for _, u := range users {
		id := u.ID.String()
		status := "status-badge inactive"
		if u.IsActive {
			status = "status-badge active"
		}
		actions := Add(El("div", "class", "user-actions"),
			postForm(AdminActionPath("toggle-subscription", id), "Toggle Subscription", "btn btn-sm"))
		if u.CanDeactivate() {
			Add(actions, postForm(AdminActionPath("deactivate-user", id), "Deactivate", "btn btn-danger btn-sm confirm"))
		}
		rows = append(rows, Add(El("div", "class", "user-item", "data-id", id),
			Add(El("div", "class", "user-info"),
				Wrap("h4", u.FullName),
				Wrap("p", u.Email),
				Add(El("p"),
					Wrap("span", u.Role, "class", "role-badge"),
					Text(" "),
					Wrap("span", u.StatusLabel(), "class", status),
					Text(" "),
					Wrap("span", u.SubscriptionLabel(), "class", "sub-badge"),
				),
			),
			actions,
		))
	}
	Replace(container, rows...)
}

// Requests renders pending subscription requests with approve and reject forms.
func Requests(reqs []admin.SubscriptionRequest, container *html.Node) {
	if len(reqs) == 0 {
		Replace(container, placeholder(NoPendingRequests))
		return
	}
	rows := make([]*html.Node, 0, len(reqs))
	for _, r := range reqs {
		id := r.ID.String()
		rows = append(rows, Add(El("div", "class", "request-item", "data-id", id),
			Add(El("div", "class", "request-info"),
				Wrap("h4", r.FullName),
				Wrap("p", r.Email),
				Wrap("p", r.Reason, "class", "reason"),
			),
			Add(El("div", "class", "request-actions"),
				postForm(AdminActionPath("approve-subscription", id), "Approve", "btn btn-success btn-sm"),
				postForm(AdminActionPath("reject-subscription", id), "Reject", "btn btn-danger btn-sm"),
			),
		))
	}
	Replace(container, rows...)
}

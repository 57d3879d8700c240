package actions

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"civicbriefs/internal/adapters/civicapi"
	"civicbriefs/internal/adapters/email"
	"civicbriefs/internal/application/toast"
)

// Toast texts for the capsule email.
const (
	MsgCapsuleEmailed  = "Capsule sent to "
	MsgNoEmailIdentity = "Login required to email the capsule"
)

// ErrNoRenderer is returned when EmailCapsule is wired without a renderer.
var ErrNoRenderer = errors.New("capsule email renderer not configured")

// ExecuteEmailCapsule renders today's capsule and mails it to the signed-in user.
// PRE: deps.Mailer and deps.RenderCapsuleEmail are set
// POST: nothing is sent when there is no identity email or the capsule could not be fetched
func ExecuteEmailCapsule(ctx context.Context, deps Deps, from string) Status {
	id, ok := deps.Session.Identity(ctx)
	if !ok || id.Email == "" {
		toast.Push(ctx, toast.Error, MsgNoEmailIdentity)
		return Status{Text: MsgNoEmailIdentity}
	}
	if deps.RenderCapsuleEmail == nil || deps.Mailer == nil {
		slog.Error("internal_error", "operation", "email_capsule", "error", ErrNoRenderer)
		toast.Push(ctx, toast.Error, civicapi.FailureMessage)
		return Status{Text: ErrNoRenderer.Error()}
	}

	c, res := deps.API.DailyCapsule(ctx, deps.Session.Credential(ctx))
	if !res.OK {
		return statusOf(res)
	}
	body, err := deps.RenderCapsuleEmail(c)
	if err != nil {
		slog.Error("internal_error", "operation", "render_capsule_email", "error", err)
		toast.Push(ctx, toast.Error, civicapi.FailureMessage)
		return Status{Text: err.Error()}
	}

	receipt, err := deps.Mailer.Send(ctx, email.Message{
		To:      []string{id.Email},
		From:    from,
		Subject: fmt.Sprintf("Daily UPSC Capsule - %s", c.DisplayDate()),
		HTML:    body,
	})
	if err != nil {
		slog.Error("email_failed", "to", id.Email, "error", err)
		toast.Push(ctx, toast.Error, civicapi.FailureMessage)
		return Status{Text: err.Error()}
	}
	slog.Info("email_sent", "to", id.Email, "message_id", receipt.MessageID)
	toast.Push(ctx, toast.Success, MsgCapsuleEmailed+id.Email)
	return Status{Text: MsgCapsuleEmailed + id.Email, OK: true}
}

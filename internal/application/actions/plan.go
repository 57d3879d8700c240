package actions

import (
	"context"

	"civicbriefs/internal/application/toast"
	"civicbriefs/internal/domain/plan"
)

// MsgPlanRecomputed is toasted after a recompute and reload.
const MsgPlanRecomputed = "Plan recomputed"

// PlanOutcome carries the plan envelope. A nil Envelope.Plan renders the empty message.
type PlanOutcome struct {
	Envelope plan.Envelope
	Status   Status
}

// ExecuteGenerateSchedule asks the backend to build a study schedule.
func ExecuteGenerateSchedule(ctx context.Context, deps Deps) Status {
	_, res := deps.API.GenerateSchedule(ctx, deps.Session.Credential(ctx))
	return statusOf(res)
}

// ExecuteLoadPlan fetches the user's current plan.
func ExecuteLoadPlan(ctx context.Context, deps Deps) PlanOutcome {
	env, res := deps.API.MyPlan(ctx, deps.Session.Credential(ctx))
	return PlanOutcome{Envelope: env, Status: statusOf(res)}
}

// ExecuteRecomputePlan recomputes the plan and reloads it.
// POST: the reload runs whether or not the recompute succeeded
func ExecuteRecomputePlan(ctx context.Context, deps Deps) PlanOutcome {
	deps.API.RecomputePlan(ctx, deps.Session.Credential(ctx))
	out := ExecuteLoadPlan(ctx, deps)
	toast.Push(ctx, toast.Success, MsgPlanRecomputed)
	return out
}

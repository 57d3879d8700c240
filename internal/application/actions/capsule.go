package actions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"civicbriefs/internal/application/toast"
	"civicbriefs/internal/domain/capsule"
	"civicbriefs/internal/domain/report"
)

// Toast texts for capsule actions.
const (
	MsgCapsuleLoaded     = "Loaded capsule"
	MsgPipelineCompleted = "Pipeline completed"
	MsgSampleIngested    = "Sample news added"
	MsgNewsIngested      = "News item added"
)

// CapsuleOutcome is a capsule fetch. Loaded is false when the call failed.
type CapsuleOutcome struct {
	Capsule capsule.Capsule
	Loaded  bool
}

// ExecuteLoadCapsule fetches today's capsule.
// POST: toast "Loaded capsule" on success
func ExecuteLoadCapsule(ctx context.Context, deps Deps) CapsuleOutcome {
	c, res := deps.API.DailyCapsule(ctx, deps.Session.Credential(ctx))
	if !res.OK {
		return CapsuleOutcome{Capsule: c}
	}
	toast.Push(ctx, toast.Success, MsgCapsuleLoaded)
	return CapsuleOutcome{Capsule: c, Loaded: true}
}

// PipelineOutcome carries the pipeline status and, on success, the reloaded capsule.
type PipelineOutcome struct {
	Status  Status
	Result  report.PipelineResult
	Capsule *CapsuleOutcome
}

// ExecuteRunPipeline runs the backend pipeline, then reloads the capsule.
// INVARIANT: the reload is issued only after the pipeline call has returned OK
func ExecuteRunPipeline(ctx context.Context, deps Deps) PipelineOutcome {
	result, res := deps.API.RunPipeline(ctx, deps.Session.Credential(ctx))
	out := PipelineOutcome{Status: statusOf(res), Result: result}
	if !res.OK {
		return out
	}
	c, capRes := deps.API.DailyCapsule(ctx, deps.Session.Credential(ctx))
	out.Capsule = &CapsuleOutcome{Capsule: c, Loaded: capRes.OK}
	if capRes.OK {
		toast.Push(ctx, toast.Success, MsgPipelineCompleted)
	}
	return out
}

// SampleNews is the canned item the "add sample news" control ingests.
// The URL is unique per call so repeated ingests are not deduplicated away.
func SampleNews(now time.Time) capsule.NewsIn {
	return capsule.NewsIn{
		Source:      "admin",
		Title:       "RBI policy update on inflation",
		URL:         fmt.Sprintf("https://example.com/rbi-%d", now.UnixMilli()),
		PublishedAt: now.UTC().Format(time.RFC3339),
		Content:     "RBI keeps repo rate; measures to manage inflation and growth.",
	}
}

// ExecuteIngestSample ingests SampleNews.
func ExecuteIngestSample(ctx context.Context, deps Deps, now time.Time) Status {
	res := deps.API.IngestNews(ctx, deps.Session.Credential(ctx), []capsule.NewsIn{SampleNews(now)})
	if res.OK {
		toast.Push(ctx, toast.Success, MsgSampleIngested)
	}
	return statusOf(res)
}

// ExecuteIngestNews validates and ingests one operator-entered item.
// PRE: none
// POST: zero network calls and an error toast when the item is invalid
func ExecuteIngestNews(ctx context.Context, deps Deps, item capsule.NewsIn) Status {
	item.Source = strings.TrimSpace(item.Source)
	item.Title = strings.TrimSpace(item.Title)
	item.URL = strings.TrimSpace(item.URL)
	if item.PublishedAt == "" {
		item.PublishedAt = time.Now().UTC().Format(time.RFC3339)
	}
	if err := item.Validate(); err != nil {
		toast.Push(ctx, toast.Error, err.Error())
		return Status{Text: err.Error()}
	}
	if err := validate.Struct(item); err != nil {
		msg := "Source, title, a valid URL and content are required"
		toast.Push(ctx, toast.Error, msg)
		return Status{Text: msg}
	}
	res := deps.API.IngestNews(ctx, deps.Session.Credential(ctx), []capsule.NewsIn{item})
	if res.OK {
		toast.Push(ctx, toast.Success, MsgNewsIngested)
	}
	return statusOf(res)
}

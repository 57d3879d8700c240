package plan_test

import (
	"encoding/json"
	"testing"

	"civicbriefs/internal/domain/plan"
)

// TestPlan_Summary formats the feedback line.
func TestPlan_Summary(t *testing.T) {
	var env plan.Envelope
	body := `{"plan":{"weeks":[{"week":1,"hours":10,"tasks":["GS1: History"]}],"feedback_summary":{"tests_considered":3,"average_score":61.5,"weak_topics":["Economy","Polity"]}}}`
	if err := json.Unmarshal([]byte(body), &env); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	env.Plan.Normalize()
	want := "Tests: 3 | Avg Score: 61.5 | Weak: Economy, Polity"
	if got := env.Plan.Summary(); got != want {
		t.Errorf("Summary = %q, want %q", got, want)
	}
	if env.Plan.Weeks[0].Week.String() != "1" {
		t.Errorf("Week = %q, want 1", env.Plan.Weeks[0].Week)
	}
}

// TestEnvelope_NullPlan verifies a null plan decodes to nil.
func TestEnvelope_NullPlan(t *testing.T) {
	var env plan.Envelope
	if err := json.Unmarshal([]byte(`{"plan":null}`), &env); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if env.Plan != nil {
		t.Error("Plan should be nil")
	}
	p := plan.Plan{}
	p.Normalize()
	if got := p.Summary(); got != "Tests: 0 | Avg Score: 0 | Weak: " {
		t.Errorf("Summary = %q", got)
	}
}

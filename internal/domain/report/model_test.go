package report_test

import (
	"encoding/json"
	"testing"

	"civicbriefs/internal/domain/report"
)

func TestWeekly_DecodeAndNormalize(t *testing.T) {
	body := `{"week_start":"2024-05-06","week_end":"2024-05-12",
		"highlights":[{"date":"2024-05-07","title":"Monsoon outlook","url":"https://x.in/m","summary":"IMD forecast","topics":null}],
		"progress":{"tests_recorded":"4","average_score":72.25}}`
	var w report.Weekly
	if err := json.Unmarshal([]byte(body), &w); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	w.Normalize()
	if w.Period() != "2024-05-06 to 2024-05-12" {
		t.Errorf("Period = %q", w.Period())
	}
	if w.Progress.TestsRecorded.Int() != 4 {
		t.Errorf("TestsRecorded = %v, want 4", w.Progress.TestsRecorded)
	}
	if w.Highlights[0].Topics == nil || w.Highlights[0].Pyqs == nil {
		t.Error("Normalize should fill nil topics and pyqs")
	}
}

package entity

import (
	"encoding/json"
	"testing"
)

func newFourStepRun() *GenerationRun {
	return NewGenerationRun("p1", "client-1", []StepName{StepStructure, StepSEO, StepContent, StepDesign})
}

func TestNewGenerationRun(t *testing.T) {
	run := newFourStepRun()
	if run.Status != RunStatusPending {
		t.Fatalf("status = %s, want pending", run.Status)
	}
	if len(run.Steps) != 4 {
		t.Fatalf("steps = %d, want 4", len(run.Steps))
	}
	for i, step := range run.Steps {
		if step.Ordinal != i || step.Status != StepStatusPending {
			t.Fatalf("step %d = %+v", i, step)
		}
	}
}

func TestProgressAdvancesPerStep(t *testing.T) {
	run := newFourStepRun()
	out := json.RawMessage(`{}`)

	run.StepDone(StepStructure, out)
	if run.Progress != 25 {
		t.Fatalf("progress = %d, want 25", run.Progress)
	}
	run.StepDone(StepSEO, out)
	if run.Progress != 50 {
		t.Fatalf("progress = %d, want 50", run.Progress)
	}
	run.StepDone(StepContent, out)
	if run.Progress != 75 {
		t.Fatalf("progress = %d, want 75", run.Progress)
	}
	run.Complete()
	if run.Progress != 100 || run.CompletedAt == nil {
		t.Fatalf("completed run: progress=%d completed_at=%v", run.Progress, run.CompletedAt)
	}
}

func TestFailRecordsStep(t *testing.T) {
	run := newFourStepRun()
	run.Start()
	run.StepDone(StepStructure, json.RawMessage(`{}`))
	run.Fail(StepSEO, "missing required key: site_title")

	if run.Status != RunStatusFailed {
		t.Fatalf("status = %s, want failed", run.Status)
	}
	if run.FailedStep != string(StepSEO) {
		t.Fatalf("failed step = %s, want seo", run.FailedStep)
	}
	if run.ErrorDetail == "" || run.CompletedAt == nil {
		t.Fatal("failure must record detail and completion time")
	}
	for _, step := range run.Steps {
		if step.Name == StepSEO && step.Status != StepStatusFailed {
			t.Fatalf("seo step status = %s, want failed", step.Status)
		}
	}
	// 已完成步骤的进度保留
	if run.Progress != 25 {
		t.Fatalf("progress = %d, want 25", run.Progress)
	}
}

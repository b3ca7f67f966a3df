package lifecycle

import (
	"testing"

	"sitepilot-api/internal/domain/entity"
	apperrors "sitepilot-api/pkg/errors"
)

func TestNextAllowsTableTransitions(t *testing.T) {
	cases := []struct {
		from  entity.ProjectStatus
		event Event
		want  entity.ProjectStatus
	}{
		{entity.ProjectStatusPending, EventQuestionsNeeded, entity.ProjectStatusQuestions},
		{entity.ProjectStatusPending, EventStartGeneration, entity.ProjectStatusGenerating},
		{entity.ProjectStatusQuestions, EventStartGeneration, entity.ProjectStatusGenerating},
		{entity.ProjectStatusGenerating, EventGenerationDone, entity.ProjectStatusReview},
		{entity.ProjectStatusReview, EventRequestChanges, entity.ProjectStatusReview},
		{entity.ProjectStatusReview, EventApprove, entity.ProjectStatusApproved},
		{entity.ProjectStatusReview, EventRegenerate, entity.ProjectStatusGenerating},
		{entity.ProjectStatusApproved, EventGoLive, entity.ProjectStatusLive},
	}
	for _, tc := range cases {
		got, err := Next(tc.from, tc.event)
		if err != nil {
			t.Fatalf("%s + %s: unexpected error %v", tc.from, tc.event, err)
		}
		if got != tc.want {
			t.Fatalf("%s + %s: got %s, want %s", tc.from, tc.event, got, tc.want)
		}
	}
}

func TestNextRejectsEverythingOutsideTable(t *testing.T) {
	statuses := []entity.ProjectStatus{
		entity.ProjectStatusPending,
		entity.ProjectStatusQuestions,
		entity.ProjectStatusGenerating,
		entity.ProjectStatusReview,
		entity.ProjectStatusApproved,
		entity.ProjectStatusLive,
	}
	events := []Event{
		EventQuestionsNeeded, EventStartGeneration, EventGenerationDone,
		EventRequestChanges, EventApprove, EventGoLive, EventRegenerate,
	}

	allowed := map[entity.ProjectStatus]map[Event]bool{
		entity.ProjectStatusPending:    {EventQuestionsNeeded: true, EventStartGeneration: true},
		entity.ProjectStatusQuestions:  {EventStartGeneration: true},
		entity.ProjectStatusGenerating: {EventGenerationDone: true},
		entity.ProjectStatusReview:     {EventRequestChanges: true, EventApprove: true, EventRegenerate: true},
		entity.ProjectStatusApproved:   {EventGoLive: true},
	}

	for _, from := range statuses {
		for _, event := range events {
			if allowed[from][event] {
				continue
			}
			_, err := Next(from, event)
			if err == nil {
				t.Fatalf("%s + %s: expected rejection", from, event)
			}
			appErr := apperrors.AsAppError(err)
			if appErr == nil || appErr.Code != apperrors.CodeInvalidTransition {
				t.Fatalf("%s + %s: expected invalid transition code, got %v", from, event, err)
			}
		}
	}
}

func TestNextPendingGoLiveRejected(t *testing.T) {
	_, err := Next(entity.ProjectStatusPending, EventGoLive)
	if err == nil {
		t.Fatal("pending + go_live must be rejected, not coerced to a legal edge")
	}
}

func TestNextLiveIsTerminal(t *testing.T) {
	events := []Event{
		EventQuestionsNeeded, EventStartGeneration, EventGenerationDone,
		EventRequestChanges, EventApprove, EventGoLive, EventRegenerate,
	}
	for _, event := range events {
		if _, err := Next(entity.ProjectStatusLive, event); err == nil {
			t.Fatalf("live + %s: expected rejection", event)
		}
	}
}

func TestCanFire(t *testing.T) {
	if !CanFire(entity.ProjectStatusReview, EventApprove) {
		t.Fatal("review + approve should be fireable")
	}
	if CanFire(entity.ProjectStatusPending, EventApprove) {
		t.Fatal("pending + approve should not be fireable")
	}
}

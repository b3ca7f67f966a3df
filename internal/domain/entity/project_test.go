package entity

import "testing"

func TestCheckInvariants(t *testing.T) {
	url := "https://acme.example.com"

	cases := []struct {
		name    string
		status  ProjectStatus
		liveURL *string
		hasArt  bool
		want    bool
	}{
		{"fresh project", ProjectStatusPending, nil, false, true},
		{"live with url", ProjectStatusLive, &url, true, true},
		{"url before live", ProjectStatusApproved, &url, true, false},
		{"artifact in review", ProjectStatusReview, nil, true, true},
		{"artifact in pending", ProjectStatusPending, nil, true, false},
		{"artifact in questions", ProjectStatusQuestions, nil, true, false},
		{"regeneration in flight", ProjectStatusGenerating, nil, true, true},
	}
	for _, tc := range cases {
		p := NewProject("client-1", "Acme")
		p.Status = tc.status
		p.LiveURL = tc.liveURL
		if tc.hasArt {
			p.Artifact = completeArtifact()
		}
		if got := p.CheckInvariants(); got != tc.want {
			t.Fatalf("%s: CheckInvariants = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestInputsEditable(t *testing.T) {
	p := NewProject("client-1", "Acme")
	if !p.InputsEditable() {
		t.Fatal("pending inputs are editable")
	}
	p.Status = ProjectStatusQuestions
	if !p.InputsEditable() {
		t.Fatal("questions inputs are editable")
	}
	for _, s := range []ProjectStatus{ProjectStatusGenerating, ProjectStatusReview, ProjectStatusApproved, ProjectStatusLive} {
		p.Status = s
		if p.InputsEditable() {
			t.Fatalf("%s inputs must be locked", s)
		}
	}
}

func TestReviewOrLater(t *testing.T) {
	later := []ProjectStatus{ProjectStatusReview, ProjectStatusApproved, ProjectStatusLive}
	for _, s := range later {
		if !s.ReviewOrLater() {
			t.Fatalf("%s is review or later", s)
		}
	}
	earlier := []ProjectStatus{ProjectStatusPending, ProjectStatusQuestions, ProjectStatusGenerating}
	for _, s := range earlier {
		if s.ReviewOrLater() {
			t.Fatalf("%s is not review or later", s)
		}
	}
}

package entity

import (
	"strings"
	"testing"
)

func TestNormalizeQuestionsTruncatesToFive(t *testing.T) {
	in := []string{"q1", "q2", "q3", "q4", "q5", "q6", "q7"}
	out := NormalizeQuestions(in)
	if len(out) != ClarificationQuestionCount {
		t.Fatalf("len = %d, want %d", len(out), ClarificationQuestionCount)
	}
	for i := 0; i < ClarificationQuestionCount; i++ {
		if out[i] != in[i] {
			t.Fatalf("question %d = %q, want %q", i, out[i], in[i])
		}
	}
}

func TestNormalizeQuestionsPadsToFive(t *testing.T) {
	out := NormalizeQuestions([]string{"What do you sell?"})
	if len(out) != ClarificationQuestionCount {
		t.Fatalf("len = %d, want %d", len(out), ClarificationQuestionCount)
	}
	if out[0] != "What do you sell?" {
		t.Fatalf("supplied question must come first, got %q", out[0])
	}
	for i := 1; i < ClarificationQuestionCount; i++ {
		if out[i] == "" {
			t.Fatalf("question %d must be padded, got empty", i)
		}
	}
}

func TestNormalizeQuestionsDropsBlanks(t *testing.T) {
	out := NormalizeQuestions([]string{"  ", "Real question?", ""})
	if out[0] != "Real question?" {
		t.Fatalf("blank questions must be dropped, got %v", out)
	}
	if len(out) != ClarificationQuestionCount {
		t.Fatalf("len = %d, want %d", len(out), ClarificationQuestionCount)
	}
}

func TestAllAnswered(t *testing.T) {
	round := NewClarificationRound("p1", []string{"q1", "q2", "q3", "q4", "q5"})
	if round.AllAnswered() {
		t.Fatal("no answers yet")
	}
	round.Answers = []string{"a1", "a2", "a3", "a4"}
	if round.AllAnswered() {
		t.Fatal("answer count mismatch")
	}
	round.Answers = []string{"a1", "a2", "a3", "a4", "  "}
	if round.AllAnswered() {
		t.Fatal("blank answer does not count")
	}
	round.Answers = []string{"a1", "a2", "a3", "a4", "a5"}
	if !round.AllAnswered() {
		t.Fatal("all questions answered")
	}
}

func TestMergedDescriptionKeepsQuestionOrder(t *testing.T) {
	round := NewClarificationRound("p1", []string{"First?", "Second?", "Third?", "Fourth?", "Fifth?"})
	round.Answers = []string{"one", "two", "three", "four", "five"}

	merged := round.MergedDescription("A plumbing business")
	if !strings.HasPrefix(merged, "A plumbing business") {
		t.Fatalf("base description must lead, got %q", merged)
	}
	prev := -1
	for i, q := range round.Questions {
		qi := strings.Index(merged, q)
		ai := strings.Index(merged, round.Answers[i])
		if qi < 0 || ai < 0 {
			t.Fatalf("missing pair %d in %q", i, merged)
		}
		if qi < prev || ai < qi {
			t.Fatalf("pairs out of order in %q", merged)
		}
		prev = ai
	}
}

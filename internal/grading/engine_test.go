package grading

import "testing"

func TestObjectiveMatching(t *testing.T) {
	g := NewDefaultGrader()
	q := Q{Type: TypeObjective, Points: 1, AnswerKey: "4"}

	cases := []struct {
		response string
		correct  bool
	}{
		{"4", true},
		{" 4 ", true},
		{"\t4\n", true},
		{"5", false},
		{"", false},
		{"44", false},
	}
	for _, tc := range cases {
		res, err := g.Grade(q, tc.response)
		if err != nil {
			t.Fatalf("grade %q: %v", tc.response, err)
		}
		if res.Correct != tc.correct {
			t.Fatalf("grade %q: correct=%v want %v", tc.response, res.Correct, tc.correct)
		}
		if tc.correct && res.Awarded != 1 {
			t.Fatalf("grade %q: awarded=%d", tc.response, res.Awarded)
		}
	}
}

func TestObjectiveIsCaseInsensitive(t *testing.T) {
	g := NewDefaultGrader()
	res, err := g.Grade(Q{Type: TypeObjective, Points: 3, AnswerKey: " Paris"}, "pARIS ")
	if err != nil || !res.Correct || res.Awarded != 3 || res.MaxPoints != 3 {
		t.Fatalf("unexpected result %+v err=%v", res, err)
	}
}

func TestTheoryCreditsAnyNonBlankAnswer(t *testing.T) {
	g := NewDefaultGrader()
	q := Q{Type: TypeTheory, Points: 5, AnswerKey: "reference essay"}

	res, _ := g.Grade(q, "something unrelated")
	if !res.Correct || res.Awarded != 5 {
		t.Fatalf("non-empty theory answer should get full credit, got %+v", res)
	}
	res, _ = g.Grade(q, "   ")
	if res.Correct || res.Awarded != 0 {
		t.Fatalf("blank theory answer should get nothing, got %+v", res)
	}
}

func TestUnknownTypeIsAnError(t *testing.T) {
	if _, err := NewDefaultGrader().Grade(Q{Type: "essay", Points: 1}, "x"); err == nil {
		t.Fatalf("expected error for unregistered type")
	}
}

func TestPercentage(t *testing.T) {
	cases := []struct {
		score, max int
		want       float64
	}{
		{1, 1, 100},
		{0, 0, 0},
		{5, 0, 0},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{0, 7, 0},
	}
	for _, tc := range cases {
		if got := Percentage(tc.score, tc.max); got != tc.want {
			t.Fatalf("Percentage(%d,%d)=%v want %v", tc.score, tc.max, got, tc.want)
		}
	}
}

package exam_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/mind-engage/examhall/internal/apperr"
	"github.com/mind-engage/examhall/internal/exam"
)

func TestQuestionValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   exam.NewQuestion
	}{
		{"missing text", exam.NewQuestion{QuestionType: "theory"}},
		{"bad type", exam.NewQuestion{QuestionText: "x", QuestionType: "essay"}},
		{"negative points", exam.NewQuestion{QuestionText: "x", QuestionType: "theory", Points: points(-1)}},
		{"zero points", exam.NewQuestion{QuestionText: "x", QuestionType: "theory", Points: points(0)}},
		{"objective without options", exam.NewQuestion{QuestionText: "x", QuestionType: "objective", CorrectAnswer: "a"}},
		{"objective without answer", exam.NewQuestion{QuestionText: "x", QuestionType: "objective", Options: []string{"a"}}},
		{"theory with options", exam.NewQuestion{QuestionText: "x", QuestionType: "theory", Options: []string{"a"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.questions.Create(ctx, tc.in, admin); !errors.Is(err, apperr.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestQuestionDefaultsAndAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	q, err := f.questions.Create(ctx, exam.NewQuestion{QuestionText: "Define entropy", QuestionType: "theory"}, admin)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if q.Points != 1 || q.CreatedBy != admin.ID || q.ID == "" {
		t.Fatalf("unexpected question %+v", q)
	}
	heavy, err := f.questions.Create(ctx, exam.NewQuestion{QuestionText: "Essay", QuestionType: "theory", Points: points(7)}, admin)
	if err != nil || heavy.Points != 7 {
		t.Fatalf("explicit points: %+v %v", heavy, err)
	}
	if _, err := f.questions.Create(ctx, objective("4", 1), student); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("student create: expected forbidden, got %v", err)
	}
	if _, err := f.questions.List(ctx, student); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("student list: expected forbidden, got %v", err)
	}
	list, err := f.questions.List(ctx, admin)
	if err != nil || len(list) != 2 {
		t.Fatalf("list: %v %v", list, err)
	}

	if err := f.questions.Delete(ctx, q.ID, admin); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.questions.Delete(ctx, q.ID, admin); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("second delete: expected not found, got %v", err)
	}
}

func TestQuizCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.quizzes.Create(ctx, exam.NewQuiz{Title: " ", TimeLimit: 5}, admin); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("blank title: %v", err)
	}
	if _, err := f.quizzes.Create(ctx, exam.NewQuiz{Title: "T", TimeLimit: 0}, admin); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("zero time limit: %v", err)
	}
	if _, err := f.quizzes.Create(ctx, exam.NewQuiz{Title: "T", TimeLimit: 5}, student); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("student create: %v", err)
	}
}

func TestQuizListShowsActiveOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	empty, err := f.quizzes.List(ctx)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("empty list should be non-nil and empty: %v %v", empty, err)
	}

	keep := f.quiz(t)
	hide := f.quiz(t)
	if err := f.quizzes.Deactivate(ctx, hide.ID, admin); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	list, err := f.quizzes.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != keep.ID {
		t.Fatalf("expected only the active quiz, got %+v", list)
	}

	// deactivated quizzes remain addressable by id
	if _, err := f.quizzes.Get(ctx, hide.ID, student); err != nil {
		t.Fatalf("get inactive: %v", err)
	}
	if err := f.quizzes.Deactivate(ctx, "nope", admin); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("deactivate missing: %v", err)
	}
	if err := f.quizzes.Deactivate(ctx, keep.ID, student); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("student deactivate: %v", err)
	}
}

func TestQuizGetHidesAnswersFromStudents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q1 := f.question(t, objective("4", 1))
	q2 := f.question(t, theory(2))
	quiz := f.quiz(t, q2.ID, "missing", q1.ID)

	view, err := f.quizzes.Get(ctx, quiz.ID, student)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(view.QuestionDetails) != 2 || view.QuestionDetails[0].ID != q2.ID || view.QuestionDetails[1].ID != q1.ID {
		t.Fatalf("questions should follow quiz order and skip missing ids: %+v", view.QuestionDetails)
	}
	raw, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	body := string(raw)
	for _, key := range []string{"correct_answer", "explanation", "basic arithmetic"} {
		if strings.Contains(body, key) {
			t.Fatalf("student view leaks %q: %s", key, body)
		}
	}

	// still hidden after the student has submitted
	if _, err := f.engine.Start(ctx, quiz.ID, student); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := f.engine.Submit(ctx, quiz.ID, student, map[string]string{q1.ID: "4"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	after, err := f.quizzes.Get(ctx, quiz.ID, student)
	if err != nil {
		t.Fatalf("get after submit: %v", err)
	}
	for _, d := range after.QuestionDetails {
		if d.CorrectAnswer != nil || d.Explanation != nil {
			t.Fatalf("answers visible after submit: %+v", d)
		}
	}

	adminView, err := f.quizzes.Get(ctx, quiz.ID, admin)
	if err != nil {
		t.Fatalf("admin get: %v", err)
	}
	if got := adminView.QuestionDetails[1].CorrectAnswer; got == nil || *got != "4" {
		t.Fatalf("admin should see the answer key, got %v", got)
	}
}

func TestQuizGetMissing(t *testing.T) {
	f := newFixture(t)
	if _, err := f.quizzes.Get(context.Background(), "nope", admin); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func points(n int) *int { return &n }

package exam

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/examhall/internal/apperr"
	"github.com/mind-engage/examhall/internal/grading"
	"github.com/mind-engage/examhall/internal/lock"
	"github.com/mind-engage/examhall/internal/logger"
	syncx "github.com/mind-engage/examhall/internal/sync"
)

// AttemptDeps is what the Engine needs from persistence.
type AttemptDeps interface {
	QuizStore
	QuestionStore
	AttemptStore
}

// Engine owns the attempt lifecycle: start creates a STARTED attempt, submit
// grades it and moves it to SUBMITTED. Nothing else mutates attempts.
type Engine struct {
	store  AttemptDeps
	grader *grading.Grader
	locker Locker
	events EventRecorder
	log    *logger.Logger
	now    func() time.Time
}

type Option func(*Engine)

func WithLocker(l Locker) Option            { return func(e *Engine) { e.locker = l } }
func WithEvents(r EventRecorder) Option     { return func(e *Engine) { e.events = r } }
func WithLogger(l *logger.Logger) Option    { return func(e *Engine) { e.log = l } }
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }
func WithGrader(g *grading.Grader) Option   { return func(e *Engine) { e.grader = g } }

func NewEngine(store AttemptDeps, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		grader: grading.NewDefaultGrader(),
		locker: lock.NewLocal(),
		log:    logger.Nop(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Start opens the single attempt a student gets for an active quiz.
//
// Concurrent starts for the same (quiz, student) are serialized by the
// locker, and the store's unique constraint rejects any duplicate that gets
// past it, so exactly one attempt is ever created per pair.
func (e *Engine) Start(ctx context.Context, quizID string, student User) (StartResult, error) {
	if student.Role != RoleStudent {
		return StartResult{}, apperr.Forbidden("Only students can take quizzes")
	}
	quiz, err := e.store.QuizByID(ctx, quizID)
	if err != nil {
		return StartResult{}, err
	}
	if !quiz.IsActive {
		return StartResult{}, apperr.NotFound("Quiz not found")
	}

	release, err := e.locker.Acquire(ctx, "start:"+quizID+":"+student.ID)
	if err != nil {
		return StartResult{}, fmt.Errorf("start attempt: lock: %w", err)
	}
	defer release()

	_, err = e.store.AttemptFor(ctx, quizID, student.ID)
	switch {
	case err == nil:
		return StartResult{}, apperr.Conflict("You have already attempted this quiz")
	case !errors.Is(err, apperr.ErrNotFound):
		return StartResult{}, err
	}

	a := Attempt{
		ID:        uuid.NewString(),
		QuizID:    quizID,
		StudentID: student.ID,
		Answers:   map[string]string{},
		StartedAt: e.now().UTC(),
	}
	if err := e.store.InsertAttempt(ctx, a); err != nil {
		return StartResult{}, err
	}

	e.log.Info("attempt started", "attempt_id", a.ID, "quiz_id", quizID, "student_id", student.ID)
	e.record(ctx, syncx.TypeAttemptStarted, a.ID, map[string]any{
		"quiz_id":    quizID,
		"student_id": student.ID,
		"started_at": a.StartedAt,
	})
	return StartResult{Message: "Quiz started", AttemptID: a.ID, TimeLimit: quiz.TimeLimit}, nil
}

// Submit grades answers against the quiz's current questions and closes the
// attempt. The time limit is informational: late submissions are accepted.
func (e *Engine) Submit(ctx context.Context, quizID string, student User, answers map[string]string) (SubmitResult, error) {
	if student.Role != RoleStudent {
		return SubmitResult{}, apperr.Forbidden("Only students can submit quizzes")
	}
	a, err := e.store.AttemptFor(ctx, quizID, student.ID)
	if err != nil {
		return SubmitResult{}, err
	}
	if a.Submitted() {
		return SubmitResult{}, apperr.Conflict("Quiz already submitted")
	}

	quiz, err := e.store.QuizByID(ctx, quizID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			// the attempt outlived its quiz record; not a caller error
			return SubmitResult{}, fmt.Errorf("submit attempt %s: quiz %s no longer exists", a.ID, quizID)
		}
		return SubmitResult{}, err
	}
	questions, err := orderedQuestions(ctx, e.store, quiz.QuestionIDs)
	if err != nil {
		return SubmitResult{}, err
	}
	sheet, err := scoreAnswers(e.grader, questions, answers)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("submit attempt %s: %w", a.ID, err)
	}

	now := e.now().UTC()
	elapsed := int(now.Sub(a.StartedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	if answers == nil {
		answers = map[string]string{}
	}
	a.Answers = answers
	a.Score = &sheet.score
	a.MaxScore = &sheet.maxScore
	a.SubmittedAt = &now
	a.TimeTaken = &elapsed
	if err := e.store.MarkSubmitted(ctx, a); err != nil {
		return SubmitResult{}, err
	}

	e.log.Info("attempt submitted", "attempt_id", a.ID, "quiz_id", quizID, "student_id", student.ID,
		"score", sheet.score, "max_score", sheet.maxScore, "time_taken", elapsed)
	e.record(ctx, syncx.TypeAttemptSubmitted, a.ID, map[string]any{
		"quiz_id":      quizID,
		"student_id":   student.ID,
		"score":        sheet.score,
		"max_score":    sheet.maxScore,
		"submitted_at": now,
		"time_taken":   elapsed,
	})
	return SubmitResult{
		Score:      sheet.score,
		MaxScore:   sheet.maxScore,
		Percentage: grading.Percentage(sheet.score, sheet.maxScore),
		Results:    sheet.results,
		TimeTaken:  elapsed,
	}, nil
}

// record appends to the event log. The attempt is already persisted, so a
// failure here is logged rather than returned.
func (e *Engine) record(ctx context.Context, typ, key string, payload any) {
	if e.events == nil {
		return
	}
	if err := e.events.Record(ctx, typ, key, payload); err != nil {
		e.log.Warn("event log append failed", "type", typ, "key", key, "error", err)
	}
}

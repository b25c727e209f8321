// Package analytics builds read-only reports over users, quizzes and
// attempts. Nothing here writes.
package analytics

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mind-engage/examhall/internal/apperr"
	"github.com/mind-engage/examhall/internal/exam"
	"github.com/mind-engage/examhall/internal/grading"
)

const (
	DefaultRecentLimit = 50
	unknownQuiz        = "Unknown Quiz"
)

// Source is the slice of the store the reports read from.
type Source interface {
	CountUsers(ctx context.Context, role exam.Role) (int, error)
	UserByID(ctx context.Context, id string) (exam.User, error)
	ListQuizzes(ctx context.Context, activeOnly bool) ([]exam.Quiz, error)
	QuizByID(ctx context.Context, id string) (exam.Quiz, error)
	RecentAttempts(ctx context.Context, limit int) ([]exam.Attempt, error)
	AttemptsForQuiz(ctx context.Context, quizID string) ([]exam.Attempt, error)
}

type Activity struct {
	StudentName string     `json:"student_name"`
	QuizTitle   string     `json:"quiz_title"`
	Score       *int       `json:"score"`
	MaxScore    *int       `json:"max_score"`
	StartedAt   time.Time  `json:"started_at"`
	SubmittedAt *time.Time `json:"submitted_at"`
}

type StudentReport struct {
	TotalStudents  int        `json:"total_students"`
	RecentActivity []Activity `json:"recent_activity"`
}

type QuizStats struct {
	QuizID            string  `json:"quiz_id"`
	QuizTitle         string  `json:"quiz_title"`
	TotalAttempts     int     `json:"total_attempts"`
	CompletedAttempts int     `json:"completed_attempts"`
	AverageScore      float64 `json:"average_score"`
}

type Aggregator struct {
	src         Source
	recentLimit int
	fanout      int
}

func NewAggregator(src Source, recentLimit int) *Aggregator {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &Aggregator{src: src, recentLimit: recentLimit, fanout: 4}
}

// Students counts student accounts and lists the most recently started
// attempts. Attempts whose student no longer exists are dropped; a missing
// quiz is shown as "Unknown Quiz".
func (a *Aggregator) Students(ctx context.Context, viewer exam.User) (StudentReport, error) {
	if viewer.Role != exam.RoleAdmin {
		return StudentReport{}, apperr.Forbidden("Admin access required")
	}

	var (
		total    int
		attempts []exam.Attempt
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		total, err = a.src.CountUsers(gctx, exam.RoleStudent)
		return err
	})
	g.Go(func() (err error) {
		attempts, err = a.src.RecentAttempts(gctx, a.recentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return StudentReport{}, err
	}

	names := map[string]string{}
	titles := map[string]string{}
	activity := make([]Activity, 0, len(attempts))
	for _, at := range attempts {
		name, ok := names[at.StudentID]
		if !ok {
			u, err := a.src.UserByID(ctx, at.StudentID)
			switch {
			case err == nil:
				name = u.Username
			case errors.Is(err, apperr.ErrNotFound):
			default:
				return StudentReport{}, err
			}
			names[at.StudentID] = name
		}
		if name == "" {
			continue
		}

		title, ok := titles[at.QuizID]
		if !ok {
			q, err := a.src.QuizByID(ctx, at.QuizID)
			switch {
			case err == nil:
				title = q.Title
			case errors.Is(err, apperr.ErrNotFound):
				title = unknownQuiz
			default:
				return StudentReport{}, err
			}
			titles[at.QuizID] = title
		}

		activity = append(activity, Activity{
			StudentName: name,
			QuizTitle:   title,
			Score:       at.Score,
			MaxScore:    at.MaxScore,
			StartedAt:   at.StartedAt,
			SubmittedAt: at.SubmittedAt,
		})
	}
	return StudentReport{TotalStudents: total, RecentActivity: activity}, nil
}

// Quizzes reports attempt counts and the average completed score for every
// quiz, active or not, in quiz creation order.
func (a *Aggregator) Quizzes(ctx context.Context, viewer exam.User) ([]QuizStats, error) {
	if viewer.Role != exam.RoleAdmin {
		return nil, apperr.Forbidden("Admin access required")
	}
	quizzes, err := a.src.ListQuizzes(ctx, false)
	if err != nil {
		return nil, err
	}

	out := make([]QuizStats, len(quizzes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.fanout)
	for i, q := range quizzes {
		g.Go(func() error {
			attempts, err := a.src.AttemptsForQuiz(gctx, q.ID)
			if err != nil {
				return err
			}
			out[i] = summarize(q, attempts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func summarize(q exam.Quiz, attempts []exam.Attempt) QuizStats {
	st := QuizStats{QuizID: q.ID, QuizTitle: q.Title, TotalAttempts: len(attempts)}
	var sum, scored int
	for _, at := range attempts {
		if !at.Submitted() {
			continue
		}
		st.CompletedAttempts++
		if at.Score != nil {
			sum += *at.Score
			scored++
		}
	}
	if scored > 0 {
		st.AverageScore = grading.Round2(float64(sum) / float64(scored))
	}
	return st
}

package exam

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/examhall/internal/apperr"
)

type NewQuiz struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	QuestionIDs []string `json:"questions"`
	TimeLimit   int      `json:"time_limit"`
}

type QuizService struct {
	quizzes   QuizStore
	questions QuestionStore
	now       func() time.Time
}

func NewQuizService(quizzes QuizStore, questions QuestionStore) *QuizService {
	return &QuizService{quizzes: quizzes, questions: questions, now: time.Now}
}

// Create stores a new active quiz. Question ids are not checked against
// the bank.
func (s *QuizService) Create(ctx context.Context, in NewQuiz, author User) (Quiz, error) {
	if _, err := RequireRole(author, RoleAdmin); err != nil {
		return Quiz{}, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return Quiz{}, apperr.Validation("title is required")
	}
	if in.TimeLimit <= 0 {
		return Quiz{}, apperr.Validation("time_limit must be a positive number of minutes")
	}
	ids := make([]string, 0, len(in.QuestionIDs))
	for _, id := range in.QuestionIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	q := Quiz{
		ID:          uuid.NewString(),
		Title:       title,
		Description: in.Description,
		QuestionIDs: ids,
		TimeLimit:   in.TimeLimit,
		CreatedBy:   author.ID,
		CreatedAt:   s.now().UTC(),
		IsActive:    true,
	}
	if err := s.quizzes.InsertQuiz(ctx, q); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

// List returns active quizzes to any authenticated caller.
func (s *QuizService) List(ctx context.Context) ([]Quiz, error) {
	qs, err := s.quizzes.ListQuizzes(ctx, true)
	if err != nil {
		return nil, err
	}
	if qs == nil {
		qs = []Quiz{}
	}
	return qs, nil
}

// Get returns the quiz with its questions in quiz order. Inactive quizzes are
// still addressable here. Students never receive correct answers or
// explanations, before or after submitting.
func (s *QuizService) Get(ctx context.Context, id string, viewer User) (QuizDetail, error) {
	q, err := s.quizzes.QuizByID(ctx, id)
	if err != nil {
		return QuizDetail{}, err
	}
	questions, err := orderedQuestions(ctx, s.questions, q.QuestionIDs)
	if err != nil {
		return QuizDetail{}, err
	}
	strip := viewer.Role != RoleAdmin
	details := make([]QuestionDetail, 0, len(questions))
	for _, qq := range questions {
		details = append(details, qq.detail(strip))
	}
	return QuizDetail{Quiz: q, QuestionDetails: details}, nil
}

// Deactivate hides a quiz from listings and blocks new attempts. Existing
// attempts stay viewable and submittable.
func (s *QuizService) Deactivate(ctx context.Context, id string, viewer User) error {
	if _, err := RequireRole(viewer, RoleAdmin); err != nil {
		return err
	}
	return s.quizzes.SetQuizActive(ctx, id, false)
}

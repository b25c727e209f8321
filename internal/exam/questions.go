package exam

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/examhall/internal/apperr"
)

// NewQuestion is the admin-supplied part of a Question.
type NewQuestion struct {
	QuestionText  string   `json:"question_text"`
	QuestionType  string   `json:"question_type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	Points        *int     `json:"points"` // nil means 1
}

// QuestionService is the question bank. Mutations and listing are admin-only.
type QuestionService struct {
	store QuestionStore
	now   func() time.Time
}

func NewQuestionService(store QuestionStore) *QuestionService {
	return &QuestionService{store: store, now: time.Now}
}

func (s *QuestionService) Create(ctx context.Context, in NewQuestion, author User) (Question, error) {
	if _, err := RequireRole(author, RoleAdmin); err != nil {
		return Question{}, err
	}
	q, err := in.validate()
	if err != nil {
		return Question{}, err
	}
	q.ID = uuid.NewString()
	q.CreatedBy = author.ID
	q.CreatedAt = s.now().UTC()
	if err := s.store.InsertQuestion(ctx, q); err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *QuestionService) List(ctx context.Context, viewer User) ([]Question, error) {
	if _, err := RequireRole(viewer, RoleAdmin); err != nil {
		return nil, err
	}
	qs, err := s.store.ListQuestions(ctx)
	if err != nil {
		return nil, err
	}
	if qs == nil {
		qs = []Question{}
	}
	return qs, nil
}

// Delete removes a question. Quizzes that reference it are left alone; the
// dangling id is skipped when the quiz is read or graded.
func (s *QuestionService) Delete(ctx context.Context, id string, viewer User) error {
	if _, err := RequireRole(viewer, RoleAdmin); err != nil {
		return err
	}
	return s.store.DeleteQuestion(ctx, id)
}

func (in NewQuestion) validate() (Question, error) {
	text := strings.TrimSpace(in.QuestionText)
	if text == "" {
		return Question{}, apperr.Validation("question_text is required")
	}
	typ, err := ParseQuestionType(in.QuestionType)
	if err != nil {
		return Question{}, apperr.Validation("question_type must be objective or theory")
	}
	points := 1
	if in.Points != nil {
		if *in.Points <= 0 {
			return Question{}, apperr.Validation("points must be a positive integer")
		}
		points = *in.Points
	}

	q := Question{
		QuestionText:  text,
		QuestionType:  typ,
		CorrectAnswer: in.CorrectAnswer,
		Explanation:   in.Explanation,
		Points:        points,
	}
	switch typ {
	case QuestionObjective:
		if len(in.Options) == 0 {
			return Question{}, apperr.Validation("objective questions require options")
		}
		if strings.TrimSpace(in.CorrectAnswer) == "" {
			return Question{}, apperr.Validation("objective questions require correct_answer")
		}
		q.Options = append([]string(nil), in.Options...)
	case QuestionTheory:
		if len(in.Options) > 0 {
			return Question{}, apperr.Validation("theory questions must not have options")
		}
	}
	return q, nil
}

// orderedQuestions resolves ids against the bank in the given order. Missing
// ids are skipped and repeated ids are kept at their first position.
func orderedQuestions(ctx context.Context, store QuestionStore, ids []string) ([]Question, error) {
	found, err := store.QuestionsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]Question, len(found))
	for _, q := range found {
		byID[q.ID] = q
	}
	out := make([]Question, 0, len(found))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if q, ok := byID[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

// RequireRole returns u unchanged when it holds role.
func RequireRole(u User, role Role) (User, error) {
	if u.Role == role {
		return u, nil
	}
	switch role {
	case RoleAdmin:
		return User{}, apperr.Forbidden("Admin access required")
	case RoleStudent:
		return User{}, apperr.Forbidden("Student access required")
	}
	return User{}, apperr.Forbidden("forbidden")
}

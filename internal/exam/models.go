package exam

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// ParseRole accepts "admin" or "student" (any case); empty means student.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoleStudent:
		return RoleStudent, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

type QuestionType string

const (
	QuestionObjective QuestionType = "objective"
	QuestionTheory    QuestionType = "theory"
)

func ParseQuestionType(s string) (QuestionType, error) {
	switch QuestionType(strings.ToLower(strings.TrimSpace(s))) {
	case QuestionObjective:
		return QuestionObjective, nil
	case QuestionTheory:
		return QuestionTheory, nil
	default:
		return "", fmt.Errorf("unknown question type %q", s)
	}
}

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type Question struct {
	ID            string       `json:"id"`
	QuestionText  string       `json:"question_text"`
	QuestionType  QuestionType `json:"question_type"`
	Options       []string     `json:"options"` // objective only
	CorrectAnswer string       `json:"correct_answer"`
	Explanation   string       `json:"explanation"`
	Points        int          `json:"points"`
	CreatedBy     string       `json:"created_by"`
	CreatedAt     time.Time    `json:"created_at"`
}

// QuestionDetail is a question as returned inside a quiz. CorrectAnswer and
// Explanation are nil (and omitted from JSON) in the student view.
type QuestionDetail struct {
	ID            string       `json:"id"`
	QuestionText  string       `json:"question_text"`
	QuestionType  QuestionType `json:"question_type"`
	Options       []string     `json:"options"`
	CorrectAnswer *string      `json:"correct_answer,omitempty"`
	Explanation   *string      `json:"explanation,omitempty"`
	Points        int          `json:"points"`
	CreatedBy     string       `json:"created_by"`
	CreatedAt     time.Time    `json:"created_at"`
}

func (q Question) detail(stripAnswers bool) QuestionDetail {
	d := QuestionDetail{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		QuestionType: q.QuestionType,
		Options:      q.Options,
		Points:       q.Points,
		CreatedBy:    q.CreatedBy,
		CreatedAt:    q.CreatedAt,
	}
	if !stripAnswers {
		answer, explanation := q.CorrectAnswer, q.Explanation
		d.CorrectAnswer = &answer
		d.Explanation = &explanation
	}
	return d
}

type Quiz struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	QuestionIDs []string  `json:"questions"`
	TimeLimit   int       `json:"time_limit"` // minutes
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	IsActive    bool      `json:"is_active"`
}

type QuizDetail struct {
	Quiz
	QuestionDetails []QuestionDetail `json:"question_details"`
}

// Attempt is STARTED while SubmittedAt is nil and SUBMITTED afterwards.
type Attempt struct {
	ID          string            `json:"id"`
	QuizID      string            `json:"quiz_id"`
	StudentID   string            `json:"student_id"`
	Answers     map[string]string `json:"answers"`
	Score       *int              `json:"score"`
	MaxScore    *int              `json:"max_score"`
	StartedAt   time.Time         `json:"started_at"`
	SubmittedAt *time.Time        `json:"submitted_at"`
	TimeTaken   *int              `json:"time_taken"` // seconds
}

func (a Attempt) Submitted() bool { return a.SubmittedAt != nil }

type StartResult struct {
	Message   string `json:"message"`
	AttemptID string `json:"attempt_id"`
	TimeLimit int    `json:"time_limit"`
}

type QuestionResult struct {
	StudentAnswer string `json:"student_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation"`
	QuestionText  string `json:"question_text"`
}

type SubmitResult struct {
	Score      int                       `json:"score"`
	MaxScore   int                       `json:"max_score"`
	Percentage float64                   `json:"percentage"`
	Results    map[string]QuestionResult `json:"results"`
	TimeTaken  int                       `json:"time_taken"`
}

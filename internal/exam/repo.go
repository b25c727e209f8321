package exam

import "context"

// Store errors use the apperr kinds: lookups of absent records return
// apperr.ErrNotFound and duplicate inserts return apperr.ErrConflict.

type UserStore interface {
	InsertUser(ctx context.Context, u User) error // conflict on username or email
	UserByID(ctx context.Context, id string) (User, error)
	UserByUsername(ctx context.Context, username string) (User, error)
	AdminExists(ctx context.Context) (bool, error)
	CountUsers(ctx context.Context, role Role) (int, error)
}

type QuestionStore interface {
	InsertQuestion(ctx context.Context, q Question) error
	ListQuestions(ctx context.Context) ([]Question, error)
	// QuestionsByIDs returns the questions that exist, in no particular order.
	QuestionsByIDs(ctx context.Context, ids []string) ([]Question, error)
	DeleteQuestion(ctx context.Context, id string) error
}

type QuizStore interface {
	InsertQuiz(ctx context.Context, q Quiz) error
	ListQuizzes(ctx context.Context, activeOnly bool) ([]Quiz, error)
	QuizByID(ctx context.Context, id string) (Quiz, error)
	SetQuizActive(ctx context.Context, id string, active bool) error
}

type AttemptStore interface {
	// InsertAttempt fails with a conflict when (QuizID, StudentID) exists.
	InsertAttempt(ctx context.Context, a Attempt) error
	AttemptFor(ctx context.Context, quizID, studentID string) (Attempt, error)
	// MarkSubmitted persists the submitted fields of a, failing with a
	// conflict if the attempt was already submitted.
	MarkSubmitted(ctx context.Context, a Attempt) error
	RecentAttempts(ctx context.Context, limit int) ([]Attempt, error)
	AttemptsForQuiz(ctx context.Context, quizID string) ([]Attempt, error)
}

type Store interface {
	UserStore
	QuestionStore
	QuizStore
	AttemptStore
}

// Locker serializes work per key. Release must be called exactly once.
type Locker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// EventRecorder receives lifecycle events after they are persisted.
type EventRecorder interface {
	Record(ctx context.Context, typ, key string, payload any) error
}

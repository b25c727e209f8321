package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mind-engage/examhall/internal/apperr"
	"github.com/mind-engage/examhall/internal/db"
)

// SQLStore implements Store on database/sql. Placeholders are $n, which both
// the pgx and modernc sqlite drivers accept.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(dbh *sql.DB) *SQLStore {
	return &SQLStore{db: dbh}
}

// ---- users ----

func (s *SQLStore) InsertUser(ctx context.Context, u User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id,username,email,password_hash,role,created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		u.ID, u.Username, u.Email, u.PasswordHash, string(u.Role), toMillis(u.CreatedAt))
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("Username or email already exists")
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

const userCols = `id,username,email,password_hash,role,created_at`

func (s *SQLStore) UserByID(ctx context.Context, id string) (User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id=$1`, id))
}

func (s *SQLStore) UserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE username=$1`, username))
}

func (s *SQLStore) AdminExists(ctx context.Context) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE role=$1 LIMIT 1`, string(RoleAdmin)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find admin: %w", err)
	}
	return true, nil
}

func (s *SQLStore) CountUsers(ctx context.Context, role Role) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role=$1`, string(role)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func scanUser(row *sql.Row) (User, error) {
	var (
		u       User
		role    string
		created int64
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, apperr.NotFound("User not found")
		}
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	u.Role = Role(role)
	u.CreatedAt = fromMillis(created)
	return u, nil
}

// ---- questions ----

func (s *SQLStore) InsertQuestion(ctx context.Context, q Question) error {
	opts, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO questions (id,question_text,question_type,options_json,correct_answer,explanation,points,created_by,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		q.ID, q.QuestionText, string(q.QuestionType), string(opts), q.CorrectAnswer, q.Explanation, q.Points, q.CreatedBy, toMillis(q.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert question: %w", err)
	}
	return nil
}

const questionCols = `id,question_text,question_type,options_json,correct_answer,explanation,points,created_by,created_at`

func (s *SQLStore) ListQuestions(ctx context.Context) ([]Question, error) {
	return s.queryQuestions(ctx, `SELECT `+questionCols+` FROM questions ORDER BY created_at`)
}

func (s *SQLStore) QuestionsByIDs(ctx context.Context, ids []string) ([]Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ph := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		ph[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	return s.queryQuestions(ctx, `SELECT `+questionCols+` FROM questions WHERE id IN (`+strings.Join(ph, ",")+`)`, args...)
}

func (s *SQLStore) DeleteQuestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete question: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("Question not found")
	}
	return nil
}

func (s *SQLStore) queryQuestions(ctx context.Context, query string, args ...any) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()
	var out []Question
	for rows.Next() {
		var (
			q       Question
			typ     string
			opts    string
			created int64
		)
		if err := rows.Scan(&q.ID, &q.QuestionText, &typ, &opts, &q.CorrectAnswer, &q.Explanation, &q.Points, &q.CreatedBy, &created); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.QuestionType = QuestionType(typ)
		q.CreatedAt = fromMillis(created)
		if err := json.Unmarshal([]byte(opts), &q.Options); err != nil {
			return nil, fmt.Errorf("question %s options: %w", q.ID, err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// ---- quizzes ----

func (s *SQLStore) InsertQuiz(ctx context.Context, q Quiz) error {
	ids := q.QuestionIDs
	if ids == nil {
		ids = []string{}
	}
	qj, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO quizzes (id,title,description,question_ids_json,time_limit,created_by,is_active,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		q.ID, q.Title, q.Description, string(qj), q.TimeLimit, q.CreatedBy, boolInt(q.IsActive), toMillis(q.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

const quizCols = `id,title,description,question_ids_json,time_limit,created_by,is_active,created_at`

func (s *SQLStore) ListQuizzes(ctx context.Context, activeOnly bool) ([]Quiz, error) {
	query := `SELECT ` + quizCols + ` FROM quizzes`
	if activeOnly {
		query += ` WHERE is_active=1`
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query quizzes: %w", err)
	}
	defer rows.Close()
	var out []Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) QuizByID(ctx context.Context, id string) (Quiz, error) {
	q, err := scanQuiz(s.db.QueryRowContext(ctx, `SELECT `+quizCols+` FROM quizzes WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Quiz{}, apperr.NotFound("Quiz not found")
	}
	return q, err
}

func (s *SQLStore) SetQuizActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE quizzes SET is_active=$1 WHERE id=$2`, boolInt(active), id)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("Quiz not found")
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row scanner) (Quiz, error) {
	var (
		q       Quiz
		ids     string
		active  int
		created int64
	)
	if err := row.Scan(&q.ID, &q.Title, &q.Description, &ids, &q.TimeLimit, &q.CreatedBy, &active, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, err
		}
		return Quiz{}, fmt.Errorf("scan quiz: %w", err)
	}
	if err := json.Unmarshal([]byte(ids), &q.QuestionIDs); err != nil {
		return Quiz{}, fmt.Errorf("quiz %s questions: %w", q.ID, err)
	}
	q.IsActive = active != 0
	q.CreatedAt = fromMillis(created)
	return q, nil
}

// ---- attempts ----

func (s *SQLStore) InsertAttempt(ctx context.Context, a Attempt) error {
	answers := a.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	aj, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO attempts (id,quiz_id,student_id,answers_json,started_at) VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.QuizID, a.StudentID, string(aj), toMillis(a.StartedAt))
	if db.IsUniqueViolation(err) {
		return apperr.Conflict("You have already attempted this quiz")
	}
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

const attemptCols = `id,quiz_id,student_id,answers_json,score,max_score,started_at,submitted_at,time_taken`

func (s *SQLStore) AttemptFor(ctx context.Context, quizID, studentID string) (Attempt, error) {
	a, err := scanAttempt(s.db.QueryRowContext(ctx,
		`SELECT `+attemptCols+` FROM attempts WHERE quiz_id=$1 AND student_id=$2`, quizID, studentID))
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, apperr.NotFound("Quiz attempt not found")
	}
	return a, err
}

func (s *SQLStore) MarkSubmitted(ctx context.Context, a Attempt) error {
	if a.SubmittedAt == nil || a.Score == nil || a.MaxScore == nil || a.TimeTaken == nil {
		return errors.New("mark submitted: attempt is missing result fields")
	}
	answers := a.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	aj, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE attempts SET answers_json=$1, score=$2, max_score=$3, submitted_at=$4, time_taken=$5
		 WHERE id=$6 AND submitted_at IS NULL`,
		string(aj), *a.Score, *a.MaxScore, toMillis(*a.SubmittedAt), *a.TimeTaken, a.ID)
	if err != nil {
		return fmt.Errorf("submit attempt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.Conflict("Quiz already submitted")
	}
	return nil
}

func (s *SQLStore) RecentAttempts(ctx context.Context, limit int) ([]Attempt, error) {
	return s.queryAttempts(ctx, `SELECT `+attemptCols+` FROM attempts ORDER BY started_at DESC, id LIMIT $1`, limit)
}

func (s *SQLStore) AttemptsForQuiz(ctx context.Context, quizID string) ([]Attempt, error) {
	return s.queryAttempts(ctx, `SELECT `+attemptCols+` FROM attempts WHERE quiz_id=$1 ORDER BY started_at`, quizID)
}

func (s *SQLStore) queryAttempts(ctx context.Context, query string, args ...any) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()
	var out []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAttempt(row scanner) (Attempt, error) {
	var (
		a                     Attempt
		answers               string
		score, maxScore, took sql.NullInt64
		started               int64
		submitted             sql.NullInt64
	)
	if err := row.Scan(&a.ID, &a.QuizID, &a.StudentID, &answers, &score, &maxScore, &started, &submitted, &took); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, err
		}
		return Attempt{}, fmt.Errorf("scan attempt: %w", err)
	}
	if err := json.Unmarshal([]byte(answers), &a.Answers); err != nil {
		return Attempt{}, fmt.Errorf("attempt %s answers: %w", a.ID, err)
	}
	a.StartedAt = fromMillis(started)
	a.Score = nullInt(score)
	a.MaxScore = nullInt(maxScore)
	a.TimeTaken = nullInt(took)
	if submitted.Valid {
		t := fromMillis(submitted.Int64)
		a.SubmittedAt = &t
	}
	return a, nil
}

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

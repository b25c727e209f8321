package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/examhall/internal/analytics"
	"github.com/mind-engage/examhall/internal/auth"
	"github.com/mind-engage/examhall/internal/db/dbtest"
	"github.com/mind-engage/examhall/internal/exam"
)

type testAPI struct {
	t   *testing.T
	srv *httptest.Server
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := exam.NewSQLStore(dbtest.Open(t))
	tokens := auth.NewTokenService("test-secret", "examhall", time.Hour)
	router := NewRouter(Deps{
		Auth:      auth.NewService(store, tokens, auth.Options{BcryptCost: bcrypt.MinCost}),
		Questions: exam.NewQuestionService(store),
		Quizzes:   exam.NewQuizService(store, store),
		Attempts:  exam.NewEngine(store),
		Analytics: analytics.NewAggregator(store, 0),
		Admin:     auth.AdminAccount{Username: "admin", Email: "admin@exam.com", Password: "admin123"},
		Ready:     func(ctx context.Context) error { return nil },
	}, RouterOptions{Prefix: "/api"})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testAPI{t: t, srv: srv}
}

// do sends body as JSON and decodes the response into out when non-nil.
func (a *testAPI) do(method, path, token string, body any, out any) int {
	a.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, rd)
	if err != nil {
		a.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.srv.Client().Do(req)
	if err != nil {
		a.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			a.t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (a *testAPI) adminToken() string {
	a.t.Helper()
	if code := a.do("POST", "/api/init-admin", "", nil, nil); code != http.StatusOK {
		a.t.Fatalf("init-admin: %d", code)
	}
	var sess auth.Session
	if code := a.do("POST", "/api/login", "", map[string]string{"username": "admin", "password": "admin123"}, &sess); code != http.StatusOK {
		a.t.Fatalf("admin login: %d", code)
	}
	return sess.AccessToken
}

func (a *testAPI) studentToken(name string) string {
	a.t.Helper()
	var sess auth.Session
	code := a.do("POST", "/api/register", "", map[string]string{
		"username": name, "email": name + "@example.com", "password": "pw", "role": "student",
	}, &sess)
	if code != http.StatusOK {
		a.t.Fatalf("register %s: %d", name, code)
	}
	return sess.AccessToken
}

func TestQuizLifecycleOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	adminTok := a.adminToken()
	stuTok := a.studentToken("alice")

	var q1, q2 exam.Question
	if code := a.do("POST", "/api/questions", adminTok, map[string]any{
		"question_text": "2+2?", "question_type": "objective", "options": []string{"3", "4"},
		"correct_answer": "4", "explanation": "sum", "points": 2,
	}, &q1); code != http.StatusOK {
		t.Fatalf("create objective: %d", code)
	}
	if code := a.do("POST", "/api/questions", adminTok, map[string]any{
		"question_text": "Why?", "question_type": "theory", "points": 3,
	}, &q2); code != http.StatusOK {
		t.Fatalf("create theory: %d", code)
	}

	if code := a.do("POST", "/api/questions", adminTok, map[string]any{
		"question_text": "Free?", "question_type": "theory", "points": 0,
	}, nil); code != http.StatusBadRequest {
		t.Fatalf("zero points: %d", code)
	}

	var quiz exam.Quiz
	if code := a.do("POST", "/api/quizzes", adminTok, map[string]any{
		"title": "Basics", "questions": []string{q1.ID, q2.ID}, "time_limit": 15,
	}, &quiz); code != http.StatusOK || !quiz.IsActive {
		t.Fatalf("create quiz: %d %+v", code, quiz)
	}

	var raw map[string]any
	if code := a.do("GET", "/api/quizzes/"+quiz.ID, stuTok, nil, &raw); code != http.StatusOK {
		t.Fatalf("student get quiz: %d", code)
	}
	b, _ := json.Marshal(raw)
	if strings.Contains(string(b), "correct_answer") || strings.Contains(string(b), "explanation") {
		t.Fatalf("student view leaks answers: %s", b)
	}

	var started exam.StartResult
	if code := a.do("POST", "/api/quizzes/"+quiz.ID+"/start", stuTok, nil, &started); code != http.StatusOK {
		t.Fatalf("start: %d", code)
	}
	if started.Message != "Quiz started" || started.TimeLimit != 15 {
		t.Fatalf("unexpected start %+v", started)
	}

	var detail map[string]string
	if code := a.do("POST", "/api/quizzes/"+quiz.ID+"/start", stuTok, nil, &detail); code != http.StatusConflict {
		t.Fatalf("second start: %d", code)
	}
	if detail["detail"] != "You have already attempted this quiz" {
		t.Fatalf("detail=%q", detail["detail"])
	}

	var res exam.SubmitResult
	if code := a.do("POST", "/api/quizzes/"+quiz.ID+"/submit", stuTok, map[string]any{
		"quiz_id": quiz.ID, "answers": map[string]string{q1.ID: "4", q2.ID: "because"},
	}, &res); code != http.StatusOK {
		t.Fatalf("submit: %d", code)
	}
	if res.Score != 5 || res.MaxScore != 5 || res.Percentage != 100 {
		t.Fatalf("unexpected result %+v", res)
	}
	if code := a.do("POST", "/api/quizzes/"+quiz.ID+"/submit", stuTok, map[string]any{"answers": map[string]string{}}, nil); code != http.StatusConflict {
		t.Fatalf("resubmit: %d", code)
	}

	var stats []analytics.QuizStats
	if code := a.do("GET", "/api/analytics/quizzes", adminTok, nil, &stats); code != http.StatusOK {
		t.Fatalf("quiz analytics: %d", code)
	}
	if len(stats) != 1 || stats[0].CompletedAttempts != 1 || stats[0].AverageScore != 5 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	var rep analytics.StudentReport
	if code := a.do("GET", "/api/analytics/students", adminTok, nil, &rep); code != http.StatusOK {
		t.Fatalf("student analytics: %d", code)
	}
	if rep.TotalStudents != 1 || len(rep.RecentActivity) != 1 || rep.RecentActivity[0].QuizTitle != "Basics" {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestRoleGates(t *testing.T) {
	a := newTestAPI(t)
	adminTok := a.adminToken()
	stuTok := a.studentToken("bob")

	var quiz exam.Quiz
	a.do("POST", "/api/quizzes", adminTok, map[string]any{"title": "T", "time_limit": 5}, &quiz)

	cases := []struct {
		method, path, token string
		want                int
	}{
		{"GET", "/api/me", "", http.StatusUnauthorized},
		{"GET", "/api/me", "not-a-token", http.StatusUnauthorized},
		{"GET", "/api/me", stuTok, http.StatusOK},
		{"GET", "/api/questions", stuTok, http.StatusForbidden},
		{"POST", "/api/quizzes", stuTok, http.StatusForbidden},
		{"GET", "/api/analytics/students", stuTok, http.StatusForbidden},
		{"POST", "/api/quizzes/" + quiz.ID + "/start", adminTok, http.StatusForbidden},
		{"GET", "/api/quizzes", stuTok, http.StatusOK},
		{"GET", "/api/quizzes/missing", stuTok, http.StatusNotFound},
		{"POST", "/api/quizzes/missing/submit", stuTok, http.StatusNotFound},
		{"DELETE", "/api/questions/missing", adminTok, http.StatusNotFound},
	}
	for _, tc := range cases {
		if got := a.do(tc.method, tc.path, tc.token, nil, nil); got != tc.want {
			t.Errorf("%s %s: got %d want %d", tc.method, tc.path, got, tc.want)
		}
	}
}

func TestRegisterAndMe(t *testing.T) {
	a := newTestAPI(t)
	tok := a.studentToken("carol")

	var me map[string]any
	if code := a.do("GET", "/api/me", tok, nil, &me); code != http.StatusOK {
		t.Fatalf("me: %d", code)
	}
	if me["username"] != "carol" || me["role"] != "student" {
		t.Fatalf("unexpected me %v", me)
	}
	if _, leaked := me["password_hash"]; leaked {
		t.Fatalf("password hash exposed")
	}

	body := map[string]string{"username": "carol", "email": "c2@example.com", "password": "pw"}
	if code := a.do("POST", "/api/register", "", body, nil); code != http.StatusConflict {
		t.Fatalf("duplicate: %d", code)
	}
	if code := a.do("POST", "/api/register", "", map[string]string{"username": "x"}, nil); code != http.StatusBadRequest {
		t.Fatalf("missing fields: %d", code)
	}
	long := map[string]string{"username": "frank", "email": "frank@example.com", "password": strings.Repeat("p", 80)}
	if code := a.do("POST", "/api/register", "", long, nil); code != http.StatusBadRequest {
		t.Fatalf("long password: %d", code)
	}
	admin := map[string]string{"username": "eve", "email": "eve@example.com", "password": "pw", "role": "admin"}
	if code := a.do("POST", "/api/register", "", admin, nil); code != http.StatusForbidden {
		t.Fatalf("admin signup: %d", code)
	}
	var detail map[string]string
	if code := a.do("POST", "/api/login", "", map[string]string{"username": "carol", "password": "bad"}, &detail); code != http.StatusUnauthorized {
		t.Fatalf("bad login: %d", code)
	}
	if detail["detail"] != "Invalid credentials" {
		t.Fatalf("detail=%q", detail["detail"])
	}
}

func TestInitAdminMessages(t *testing.T) {
	a := newTestAPI(t)
	var first, second map[string]string
	a.do("POST", "/api/init-admin", "", nil, &first)
	a.do("POST", "/api/init-admin", "", nil, &second)
	if first["message"] != "Admin user created" || first["username"] != "admin" || first["password"] != "admin123" {
		t.Fatalf("first=%v", first)
	}
	if second["message"] != "Admin already exists" {
		t.Fatalf("second=%v", second)
	}
}

func TestDeactivatedQuizOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	adminTok := a.adminToken()
	stuTok := a.studentToken("dan")

	var quiz exam.Quiz
	a.do("POST", "/api/quizzes", adminTok, map[string]any{"title": "Old", "time_limit": 5}, &quiz)

	var msg map[string]string
	if code := a.do("DELETE", "/api/quizzes/"+quiz.ID, adminTok, nil, &msg); code != http.StatusOK || msg["message"] != "Quiz deactivated" {
		t.Fatalf("deactivate: %d %v", code, msg)
	}
	var list []exam.Quiz
	a.do("GET", "/api/quizzes", stuTok, nil, &list)
	if len(list) != 0 {
		t.Fatalf("inactive quiz listed: %+v", list)
	}
	if code := a.do("POST", "/api/quizzes/"+quiz.ID+"/start", stuTok, nil, nil); code != http.StatusNotFound {
		t.Fatalf("start inactive: %d", code)
	}
}

func TestConcurrentStartsOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	adminTok := a.adminToken()
	stuTok := a.studentToken("erin")

	var quiz exam.Quiz
	a.do("POST", "/api/quizzes", adminTok, map[string]any{"title": "Race", "time_limit": 5}, &quiz)

	const n = 10
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i] = a.do("POST", "/api/quizzes/"+quiz.ID+"/start", stuTok, nil, nil)
		}()
	}
	wg.Wait()

	var ok, conflict int
	for _, c := range codes {
		switch c {
		case http.StatusOK:
			ok++
		case http.StatusConflict:
			conflict++
		}
	}
	if ok != 1 || conflict != n-1 {
		t.Fatalf("codes=%v", codes)
	}
}

func TestHealthProbes(t *testing.T) {
	a := newTestAPI(t)
	if code := a.do("GET", "/healthz", "", nil, nil); code != http.StatusOK {
		t.Fatalf("healthz: %d", code)
	}
	if code := a.do("GET", "/readyz", "", nil, nil); code != http.StatusOK {
		t.Fatalf("readyz: %d", code)
	}
}

func TestInvalidJSONBody(t *testing.T) {
	a := newTestAPI(t)
	resp, err := a.srv.Client().Post(a.srv.URL+"/api/login", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestStatusMapping(t *testing.T) {
	if got := statusFor(errors.New("boom")); got != http.StatusInternalServerError {
		t.Fatalf("unknown error mapped to %d", got)
	}
}

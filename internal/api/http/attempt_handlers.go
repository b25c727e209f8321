package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/examhall/internal/auth"
	"github.com/mind-engage/examhall/internal/exam"
)

func StartAttemptHandler(eng *exam.Engine, fail errFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		student, _ := auth.UserFromContext(r.Context())
		res, err := eng.Start(r.Context(), chi.URLParam(r, "id"), student)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// POST /quizzes/{id}/submit { "quiz_id": "...", "answers": { "<question id>": "..." } }
// The path id wins over quiz_id in the body.
func SubmitAttemptHandler(eng *exam.Engine, fail errFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuizID  string            `json:"quiz_id"`
			Answers map[string]string `json:"answers"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			fail(w, r, err)
			return
		}
		student, _ := auth.UserFromContext(r.Context())
		res, err := eng.Submit(r.Context(), chi.URLParam(r, "id"), student, req.Answers)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

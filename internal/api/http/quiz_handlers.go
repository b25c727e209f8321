package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/examhall/internal/auth"
	"github.com/mind-engage/examhall/internal/exam"
)

func CreateQuizHandler(svc *exam.QuizService, fail errFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in exam.NewQuiz
		if err := decodeJSON(w, r, &in); err != nil {
			fail(w, r, err)
			return
		}
		viewer, _ := auth.UserFromContext(r.Context())
		q, err := svc.Create(r.Context(), in, viewer)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func ListQuizzesHandler(svc *exam.QuizService, fail errFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := svc.List(r.Context())
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, qs)
	}
}

// GET /quizzes/{id}; answer keys are stripped unless the caller is an admin.
func GetQuizHandler(svc *exam.QuizService, fail errFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, _ := auth.UserFromContext(r.Context())
		q, err := svc.Get(r.Context(), chi.URLParam(r, "id"), viewer)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func DeactivateQuizHandler(svc *exam.QuizService, fail errFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, _ := auth.UserFromContext(r.Context())
		if err := svc.Deactivate(r.Context(), chi.URLParam(r, "id"), viewer); err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Quiz deactivated"})
	}
}

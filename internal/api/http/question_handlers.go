package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/examhall/internal/auth"
	"github.com/mind-engage/examhall/internal/exam"
)

func CreateQuestionHandler(svc *exam.QuestionService, fail errFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in exam.NewQuestion
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

func ListQuestionsHandler(svc *exam.QuestionService, fail errFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, _ := auth.UserFromContext(r.Context())
		qs, err := svc.List(r.Context(), viewer)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, qs)
	}
}

func DeleteQuestionHandler(svc *exam.QuestionService, fail errFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, _ := auth.UserFromContext(r.Context())
		if err := svc.Delete(r.Context(), chi.URLParam(r, "id"), viewer); err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "Question deleted successfully"})
	}
}

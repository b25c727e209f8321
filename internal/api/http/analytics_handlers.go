package http

import (
	"net/http"

	"github.com/mind-engage/examhall/internal/analytics"
	"github.com/mind-engage/examhall/internal/auth"
)

func StudentAnalyticsHandler(agg *analytics.Aggregator, fail errFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, _ := auth.UserFromContext(r.Context())
		rep, err := agg.Students(r.Context(), viewer)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rep)
	}
}

func QuizAnalyticsHandler(agg *analytics.Aggregator, fail errFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer, _ := auth.UserFromContext(r.Context())
		stats, err := agg.Quizzes(r.Context(), viewer)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}

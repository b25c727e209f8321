package http

import (
	"net/http"

	"github.com/mind-engage/examhall/internal/apperr"
	"github.com/mind-engage/examhall/internal/auth"
	"github.com/mind-engage/examhall/internal/logger"
)

type errFunc = func(w http.ResponseWriter, r *http.Request, err error)

// POST /register { "username", "email", "password", "role" }
func RegisterHandler(svc *auth.Service, fail errFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in auth.Registration
		if err := decodeJSON(w, r, &in); err != nil {
			fail(w, r, err)
			return
		}
		sess, err := svc.Register(r.Context(), in)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

// POST /login { "username", "password" }
func LoginHandler(svc *auth.Service, fail errFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			fail(w, r, err)
			return
		}
		sess, err := svc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

func MeHandler(fail errFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, ok := auth.UserFromContext(r.Context())
		if !ok {
			fail(w, r, apperr.Auth("Not authenticated"))
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

// POST /init-admin creates the configured admin unless one exists.
func InitAdminHandler(svc *auth.Service, acct auth.AdminAccount, log *logger.Logger, fail errFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := svc.InitAdmin(r.Context(), acct)
		if err != nil {
			fail(w, r, err)
			return
		}
		log.Info("init-admin", "result", res.Message, "remote", r.RemoteAddr)
		writeJSON(w, http.StatusOK, res)
	}
}

package auth

import (
	"context"

	"github.com/mind-engage/examhall/internal/exam"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

func WithUser(ctx context.Context, u exam.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, u)
}

func UserFromContext(ctx context.Context) (exam.User, bool) {
	u, ok := ctx.Value(ctxKeyUser).(exam.User)
	return u, ok
}

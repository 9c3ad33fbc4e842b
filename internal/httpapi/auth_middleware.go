package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"chatlite/internal/domain"
)

type authCtxKey int

const authUserKey authCtxKey = iota

const userIDHeader = "X-User-Id"

// requireUser resolves the acting user from X-User-Id, falling back to the
// demo user the front end auto-logs in as.
func (a *api) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(userIDHeader))
		if id == "" {
			id = a.demoUserID
		}
		if id == "" {
			WriteDomainError(w, domain.ErrUnauthorized)
			return
		}

		u, err := a.usersSvc.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				err = domain.ErrUnauthorized
			}
			WriteDomainError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), authUserKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

func CurrentUser(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(authUserKey).(domain.User)
	return u, ok
}

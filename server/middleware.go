package server

import (
	"context"
	"net/http"
	"time"

	"perch/logger"
	"perch/model"
)

// sessionCookieName is the client-side half of a session: an HMAC-signed
// token keying into the session store.
const sessionCookieName = "perch_sid"

type ctxKey int

const viewContextKey ctxKey = iota

// ViewContext carries the resolved identity and its derived counters for the
// lifetime of one request. Every rendered page reflects login state through
// it without handlers repeating the lookup.
type ViewContext struct {
	User            *model.User
	FollowerCount   int64
	FollowingCount  int64
	FollowingIDList []int64
}

// Authenticated reports whether an identity was resolved.
func (v *ViewContext) Authenticated() bool {
	return v.User != nil
}

// ViewContextFrom returns the request's view context. The session gate runs
// before every handler, so the value is always present on gated routes.
func ViewContextFrom(ctx context.Context) *ViewContext {
	if vc, ok := ctx.Value(viewContextKey).(*ViewContext); ok {
		return vc
	}
	return &ViewContext{}
}

// SessionGate resolves the session cookie into an identity before any guard
// or handler runs. A missing, unsigned or expired cookie yields the
// unauthenticated zero state; a store failure fails the whole request.
func (h *WebHandler) SessionGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vc := &ViewContext{FollowingIDList: []int64{}}

		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			if token, ok := h.signer.Verify(cookie.Value); ok {
				user, err := h.identity.Resolve(r.Context(), token)
				if err != nil {
					serverError(w, "session resolution failed", err)
					return
				}
				if user != nil {
					if err := h.populateCounters(r.Context(), vc, user); err != nil {
						serverError(w, "view counter lookup failed", err)
						return
					}
				}
			}
		}

		ctx := context.WithValue(r.Context(), viewContextKey, vc)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *WebHandler) populateCounters(ctx context.Context, vc *ViewContext, user *model.User) error {
	followerCount, err := h.users.FollowerCount(ctx, user.ID)
	if err != nil {
		return err
	}
	followingCount, err := h.users.FollowingCount(ctx, user.ID)
	if err != nil {
		return err
	}
	followingIDs, err := h.users.FollowingIDs(ctx, user.ID)
	if err != nil {
		return err
	}

	vc.User = user
	vc.FollowerCount = followerCount
	vc.FollowingCount = followingCount
	if followingIDs != nil {
		vc.FollowingIDList = followingIDs
	}
	return nil
}

// RequireAuth short-circuits unauthenticated requests with 403.
func (h *WebHandler) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !ViewContextFrom(r.Context()).Authenticated() {
			http.Error(w, "로그인 필요", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	}
}

// RequireNoAuth short-circuits already-authenticated requests with a
// redirect, blocking re-login and re-registration.
func (h *WebHandler) RequireNoAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ViewContextFrom(r.Context()).Authenticated() {
			redirectWithReason(w, r, "/", "error", "로그인한 상태입니다.")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// Recover turns a handler panic into a logged generic 500.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic while handling request",
					logger.String("path", r.URL.Path),
					logger.Any("panic", rec))
				http.Error(w, "Internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// LogRequests logs one line per request.
func LogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("request",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Duration("elapsed", time.Since(start)))
	})
}

func (h *WebHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    h.signer.Sign(token),
		Path:     "/",
		MaxAge:   int(h.cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *WebHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

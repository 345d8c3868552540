package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/Simplici0/laffle/internal/session"
)

const sessionCookieName = "laffle_session"

type sessionContextKey struct{}

// sessionMiddleware attaches the visitor's session to the request context,
// starting a new one when the cookie is missing, forged or expired.
func (s *server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var value string
		if cookie, err := r.Cookie(sessionCookieName); err == nil {
			value = cookie.Value
		}

		sess, created, err := s.sessions.Resolve(r.Context(), value)
		if err != nil {
			s.log.Error("resolve session", zap.Error(err))
			http.Error(w, "failed to start session", http.StatusInternalServerError)
			return
		}
		if created {
			s.setSessionCookie(w, sess.ID)
		}

		ctx := context.WithValue(r.Context(), sessionContextKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	sess, _ := r.Context().Value(sessionContextKey{}).(*session.Session)
	return sess
}

func (s *server) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    s.sessions.Sign(id),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

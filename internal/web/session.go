package web

import (
	"log/slog"
	"net/http"
	"time"

	"yatube/internal/common"
	"yatube/internal/user"
)

// Sessions keeps the signed-in user in a cookie holding a session token.
type Sessions struct {
	tokens *common.TokenIssuer
	users  user.UserService
	cookie string
	secure bool
	log    *slog.Logger
}

func NewSessions(tokens *common.TokenIssuer, users user.UserService, cookieName string, secure bool, log *slog.Logger) *Sessions {
	return &Sessions{tokens: tokens, users: users, cookie: cookieName, secure: secure, log: log}
}

// Middleware resolves the session cookie into the request's user. Bad or stale cookies are dropped.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(s.cookie)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := s.tokens.Validate(c.Value, common.TokenSession)
		if err != nil {
			s.clear(w)
			next.ServeHTTP(w, r)
			return
		}

		u, err := s.users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			s.log.Debug("session user not loaded", "user_id", claims.UserID, "error", err)
			s.clear(w)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(common.WithUser(r.Context(), u)))
	})
}

func (s *Sessions) Login(w http.ResponseWriter, userID uint, username string) error {
	token, err := s.tokens.IssueSession(userID, username)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.tokens.SessionTTL() / time.Second),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *Sessions) Logout(w http.ResponseWriter) {
	s.clear(w)
}

func (s *Sessions) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

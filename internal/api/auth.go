package api

import (
	"errors"
	"net/http"
	"strings"

	"yatube/internal/common"
	"yatube/internal/user"
)

// Authenticate resolves a bearer access token into the request's user.
// Requests without an Authorization header stay anonymous.
func (h *Handler) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		// header = Bearer <token>
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			writeDetail(w, http.StatusUnauthorized, "Authorization header must contain two space-delimited values")
			return
		}

		claims, err := h.tokens.Validate(parts[1], common.TokenAccess)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Given token not valid for any token type")
			return
		}

		u, err := h.users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "User not found")
			return
		}

		next.ServeHTTP(w, r.WithContext(common.WithUser(r.Context(), u)))
	})
}

// writesNeedAuth lets safe methods through and rejects anonymous writes.
func writesNeedAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			if common.UserFromContext(r.Context()) == nil {
				writeDetail(w, http.StatusUnauthorized, msgNotAuthenticated)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func needAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if common.UserFromContext(r.Context()) == nil {
			writeDetail(w, http.StatusUnauthorized, msgNotAuthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type tokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) obtainToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	ve := &common.ValidationError{}
	if req.Username == "" {
		ve.Add("username", "This field is required.")
	}
	if req.Password == "" {
		ve.Add("password", "This field is required.")
	}
	if len(ve.Fields) > 0 {
		h.writeError(w, r, ve)
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, user.ErrInvalidCredentials) {
		writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	pair, err := h.tokens.IssuePair(u.ID, u.Username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func (h *Handler) refreshToken(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decode(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if req.Refresh == "" {
		h.writeError(w, r, common.NewValidationError("refresh", "This field is required."))
		return
	}

	access, err := h.tokens.Refresh(req.Refresh)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access": access})
}

package api

import (
	"net/http"

	"github.com/hyunwoo/tably/internal/auth"
)

// AuthHandler handles staff login.
type AuthHandler struct {
	Credentials *auth.Credentials
	JWTSecret   string
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, ok := h.Credentials.Authenticate(req.Username, req.Password)
	if !ok {
		jsonError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.JWTSecret, role)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"token": token, "role": role})
}

package server

import (
	"encoding/json"
	"net/http"
)

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// handleLogin exchanges the admin password for a JWT bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, ErrValidation)
		return
	}
	if req.Password == "" {
		errorResponse(w, ErrValidation)
		return
	}

	if !s.passwords.VerifyAdminPassword(req.Password) {
		errorResponse(w, ErrInvalidCredentials)
		return
	}

	token, err := s.jwtService.GenerateToken("admin")
	if err != nil {
		errorResponse(w, err)
		return
	}

	jsonResponse(w, http.StatusOK, loginResponse{Token: token})
}

package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/services"
)

const maxBodyBytes = 1 << 20

type signUpRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type signInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenRequest struct {
	RefreshToken string `json:"refreshToken"`
	ClientID     string `json:"clientId"`
}

type signOutRequest struct {
	Username string `json:"username"`
	ClientID string `json:"clientId"`
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body", common.ErrValidation)
	}
	return nil
}

func (s *RESTServer) signUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := s.sessions.SignUp(r.Context(), services.SignUpParams{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   http.StatusOK,
		"username": user.Username,
	})
}

func (s *RESTServer) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.sessions.SignIn(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":       http.StatusOK,
		"refreshToken": res.RefreshToken,
		"accessToken":  res.AccessToken,
		"clientId":     res.ClientID,
		"expiresIn":    res.ExpiresIn,
	})
}

func (s *RESTServer) renewToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := s.sessions.RenewToken(r.Context(), req.RefreshToken, req.ClientID)
	if err != nil {
		writeError(w, err)
		return
	}

	body := map[string]any{
		"status":      http.StatusOK,
		"accessToken": res.AccessToken,
		"expiresIn":   res.ExpiresIn,
	}
	if res.RefreshToken != "" {
		body["refreshToken"] = res.RefreshToken
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *RESTServer) signOut(w http.ResponseWriter, r *http.Request) {
	var req signOutRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := s.sessions.SignOut(r.Context(), req.Username, req.ClientID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   http.StatusOK,
		"username": user.Username,
	})
}

func (s *RESTServer) me(w http.ResponseWriter, r *http.Request) {
	id, ok := IdentityFromContext(r.Context())
	if !ok {
		writeError(w, common.ErrMissingToken)
		return
	}

	sessions, err := s.sessions.Sessions(r.Context(), id.User.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	clients := make([]map[string]any, 0, len(sessions))
	for _, c := range sessions {
		clients = append(clients, map[string]any{
			"clientId":  c.ClientID,
			"createdAt": c.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    http.StatusOK,
		"username":  id.User.Username,
		"firstName": id.User.FirstName,
		"lastName":  id.User.LastName,
		"email":     id.User.Email,
		"clientId":  id.Client.ClientID,
		"clients":   clients,
	})
}

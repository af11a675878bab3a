package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status, msg := errorStatus(err)
	writeJSON(w, status, map[string]any{
		"status":  status,
		"message": msg,
	})
}

// errorStatus maps service errors to an HTTP status and a fixed public
// message.
func errorStatus(err error) (int, string) {
	for _, e := range []struct {
		err    error
		status int
	}{
		{common.ErrValidation, http.StatusBadRequest},
		{common.ErrUsernameTaken, http.StatusConflict},
		{common.ErrEmailTaken, http.StatusConflict},
		{common.ErrVersionConflict, http.StatusConflict},
		{common.ErrInvalidCredentials, http.StatusUnauthorized},
		{common.ErrAlreadyLoggedOut, http.StatusUnauthorized},
		{common.ErrInvalidToken, http.StatusUnauthorized},
		{common.ErrMissingToken, http.StatusUnauthorized},
	} {
		if errors.Is(err, e.err) {
			return e.status, e.err.Error()
		}
	}
	return http.StatusInternalServerError, common.ErrorInternal.Error()
}

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/popuptinybar/tinybar/internal/models"
	"github.com/popuptinybar/tinybar/internal/quotes"
	"github.com/popuptinybar/tinybar/internal/repositories"
)

const maxBodyBytes = 1 << 20

type apiError struct {
	Status                string   `json:"status"`
	Code                  string   `json:"code"`
	Message               string   `json:"message"`
	Details               []string `json:"details,omitempty"`
	RequiresDirectContact bool     `json:"requiresDirectContact,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, map[string]any{
		"status": "success",
		"data":   data,
	})
}

func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]any{
		"status":  "success",
		"message": message,
	})
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, apiError{
		Status:  "error",
		Code:    code,
		Message: message,
	})
}

func writeDomainError(w http.ResponseWriter, err error) {
	var verr *quotes.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, apiError{
			Status:                "error",
			Code:                  "VALIDATION_ERROR",
			Message:               "la cotización no es válida",
			Details:               verr.Messages,
			RequiresDirectContact: verr.RequiresDirectContact,
		})
		return
	}
	status, code, msg := mapDomainError(err)
	writeError(w, status, code, msg)
}

func mapDomainError(err error) (int, string, string) {
	switch {
	case errors.Is(err, models.ErrInvalidStatus):
		return http.StatusBadRequest, "INVALID_STATUS", err.Error()
	case errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, repositories.ErrDuplicate):
		return http.StatusConflict, "CONFLICT", err.Error()
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
	}
}

func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return err
	}
	if len(body) > maxBodyBytes {
		return errors.New("request body too large")
	}
	if len(body) == 0 {
		return errors.New("request body is empty")
	}
	return json.Unmarshal(body, dst)
}

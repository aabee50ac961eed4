package ui

import (
	"encoding/json"
	"log"
	"net/http"

	"csvpilot/domain/core"
	apperrors "csvpilot/internal/errors"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[UI] failed to encode response: %v", err)
	}
}

// writeError maps the error taxonomy onto HTTP statuses: input errors are the
// caller's fault, data shape errors mean the file cannot answer the question,
// everything else is ours.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := apperrors.GetCode(err)

	switch {
	case core.IsInputError(err):
		status = http.StatusBadRequest
		code = apperrors.CodeInvalidInput
	case core.IsDataShapeError(err):
		status = http.StatusUnprocessableEntity
		code = apperrors.CodeInvalidInput
	case code == apperrors.CodeNotFound:
		status = http.StatusNotFound
	case code == apperrors.CodeInvalidInput:
		status = http.StatusBadRequest
	case code == apperrors.CodeExternalService, core.IsStageError(err):
		status = http.StatusBadGateway
		code = apperrors.CodeExternalService
	}

	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}

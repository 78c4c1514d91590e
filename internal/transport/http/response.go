package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"video-publisher/internal/apperror"
)

type apiError struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, apiError{Message: msg})
}

func statusOf(err error) int {
	switch apperror.CodeOf(err) {
	case apperror.CodeNotFound:
		return http.StatusNotFound
	case apperror.CodeBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeAppErr maps err onto a status and a caller-safe message. Internal
// errors are logged with their cause.
func writeAppErr(w http.ResponseWriter, logger *zap.Logger, err error) {
	code := statusOf(err)
	if code == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
	}
	writeErr(w, code, apperror.MessageOf(err))
}

// validationMessage flattens validator errors into one line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	fe := verrs[0]
	msg := fe.Namespace() + " failed on '" + fe.Tag() + "'"
	if len(verrs) > 1 {
		msg += " (and more)"
	}
	return msg
}

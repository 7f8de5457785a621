package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"ms-admission/internal/models"
)

type APIResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Code      string      `json:"code,omitempty"`
	Retryable bool        `json:"retryable,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func ErrorResponse(message, error string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     error,
		Timestamp: time.Now(),
	}
}

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// StatusFor maps an error kind onto an HTTP status.
func StatusFor(kind models.ErrorKind) int {
	switch kind {
	case models.KindInvalidQuantity, models.KindInvalidInput:
		return http.StatusBadRequest
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindForbidden:
		return http.StatusForbidden
	case models.KindInsufficientStock, models.KindAlreadyRedeemed, models.KindConflict:
		return http.StatusConflict
	case models.KindBusy:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err in the APIResponse envelope. AlreadyRedeemed keeps
// the ticket details in Data; internal failures hide their cause.
func WriteError(w http.ResponseWriter, err error) {
	kind := models.KindOf(err)
	status := StatusFor(kind)
	resp := ErrorResponse(http.StatusText(status), err.Error())
	resp.Code = string(kind)

	switch kind {
	case models.KindAlreadyRedeemed:
		var typed *models.Error
		if errors.As(err, &typed) && typed.Details != nil {
			resp.Data = typed.Details
		}
		resp.Message = "Ticket already used"
	case models.KindBusy:
		resp.Retryable = true
		w.Header().Set("Retry-After", "1")
	case models.KindForbidden:
		resp.Error = models.ErrForbidden.Message
	case models.KindInternal:
		resp.Error = models.ErrInternal.Message
	}

	WriteJSON(w, status, resp)
}

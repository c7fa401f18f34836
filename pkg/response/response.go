// Package response writes the JSON bodies every handler returns.
package response

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"sosmed/pkg/apperror"
	"sosmed/pkg/logger"
)

type MessageBody struct {
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Sugar.Errorf("Failed to encode response: %v", err)
	}
}

func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, MessageBody{Message: msg})
}

// Error writes err with the status its kind maps to.
func Error(w http.ResponseWriter, err error) {
	status := apperror.StatusCode(err)
	if status == http.StatusInternalServerError {
		logger.Sugar.Errorf("Internal error: %v", err)
	}
	Message(w, status, err.Error())
}

func RateLimited(w http.ResponseWriter, retry time.Duration) {
	secs := int(retry.Seconds())
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	Message(w, http.StatusTooManyRequests, "Too many requests, try again later")
}

package httpdto

import "time"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func NewErrorResponse(message string, status int) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Message: message, Status: status}}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

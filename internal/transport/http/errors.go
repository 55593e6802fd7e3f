package http

import (
	"encoding/json"
	"net/http"
)

const (
	codeNotFound            = "not_found"
	codeMethodNotAllowed    = "method_not_allowed"
	codeInvalidRequestBody  = "invalid_request_body"
	codeInvalidN            = "invalid_n"
	codeInvalidDate         = "invalid_date"
	codeDateInPast          = "date_in_past"
	codeInvalidEmail        = "invalid_email"
	codeMissingEmails       = "missing_emails"
	codeSlotUnavailable     = "slot_unavailable"
	codeNoAvailability      = "no_availability"
	codeReservationNotFound = "reservation_not_found"
	codeInvalidInput        = "invalid_input"
	codeInternalError       = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	payload, err := json.Marshal(v)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

type messageResponse struct {
	Message string `json:"message"`
}

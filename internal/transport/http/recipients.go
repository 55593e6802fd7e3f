package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"slotbook/internal/recipients"
)

type updateEmailsRequest struct {
	DoctorEmail    string `json:"doctorEmail"`
	SecretaryEmail string `json:"secretaryEmail"`
}

func (h *Handler) UpdateEmails(w http.ResponseWriter, r *http.Request) {
	var req updateEmailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return
	}
	if req.DoctorEmail == "" || req.SecretaryEmail == "" {
		writeError(w, http.StatusBadRequest, codeMissingEmails, "Please provide both doctor and secretary email addresses.")
		return
	}

	err := h.recipients.Update(r.Context(), recipients.Recipients{
		DoctorEmail:    req.DoctorEmail,
		SecretaryEmail: req.SecretaryEmail,
	})
	if err != nil {
		var vErr *recipients.ValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusBadRequest, codeInvalidEmail, "Invalid email address format.")
			return
		}
		h.log.Error("recipients update failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "Failed to update email addresses.")
		return
	}

	h.log.Info("notification recipients updated")
	writeJSON(w, http.StatusOK, messageResponse{Message: "Email addresses updated successfully."})
}

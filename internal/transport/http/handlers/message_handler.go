package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/nvukovic/memberhub/internal/service"
	"github.com/nvukovic/memberhub/internal/transport/http/middleware"
	"github.com/nvukovic/memberhub/pkg/validator"
)

type MessageHandler struct {
	messageService *service.MessageService
}

func NewMessageHandler(messageService *service.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Send durably inserts a direct message.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.GetMemberID(r.Context())

	var input struct {
		RecipientID uuid.UUID `json:"recipient_id"`
		Body        string    `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.RecipientID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "MISSING_RECIPIENT", "recipient_id is required")
		return
	}
	if errs := validator.ValidateMessage(input.Body); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	msg, err := h.messageService.Send(r.Context(), memberID, input.RecipientID, input.Body)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			writeError(w, http.StatusBadRequest, "EMPTY_MESSAGE", "Message body is required")
		case errors.Is(err, service.ErrCannotMessageSelf):
			writeError(w, http.StatusBadRequest, "CANNOT_MESSAGE_SELF", "Cannot message yourself")
		case errors.Is(err, service.ErrRecipientNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Recipient not found")
		default:
			log.Printf("ERROR send message: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}

// History returns the full conversation with a counterpart, oldest first.
func (h *MessageHandler) History(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.GetMemberID(r.Context())
	counterpartID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid counterpart ID")
		return
	}

	messages, err := h.messageService.History(r.Context(), memberID, counterpartID)
	if err != nil {
		log.Printf("ERROR load history: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, messages)
}

// MarkRead acknowledges messages addressed to the caller.
func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.GetMemberID(r.Context())

	var input struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if len(input.IDs) == 0 {
		writeError(w, http.StatusBadRequest, "MISSING_IDS", "ids is required")
		return
	}

	if err := h.messageService.MarkRead(r.Context(), memberID, input.IDs); err != nil {
		log.Printf("ERROR mark read: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SupportContact resolves the staff identity a member should message.
func (h *MessageHandler) SupportContact(w http.ResponseWriter, r *http.Request) {
	staff, err := h.messageService.SupportContact(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoSupportAvailable) {
			writeError(w, http.StatusNotFound, "NO_SUPPORT_AVAILABLE", "No support staff is currently available")
		} else {
			log.Printf("ERROR support contact: %v", err)
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, staff.Profile())
}

// Roster bootstraps the staff support inbox. The route is gated by
// middleware.RequireStaff; by the time this runs the caller's token
// carried the staff role.
func (h *MessageHandler) Roster(w http.ResponseWriter, r *http.Request) {
	memberID := middleware.GetMemberID(r.Context())

	entries, err := h.messageService.Roster(r.Context(), memberID)
	if err != nil {
		log.Printf("ERROR load roster: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

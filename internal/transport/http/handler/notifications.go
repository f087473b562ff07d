package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/otp-notify-api/internal/application/notification"
	"github.com/otp-notify-api/internal/domain"
	"github.com/otp-notify-api/internal/pkg/validate"
)

const defaultHistoryLimit = 20

// NotificationHandler exposes template dispatch and the dispatch audit log.
type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// Dispatch handles POST /notifications.
func (h *NotificationHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req domain.NotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.svc.Dispatch(r.Context(), req)
	if err != nil {
		var de *domain.DeliveryError
		if errors.As(err, &de) {
			slog.Error("notification delivery failed",
				"kind", req.Kind, "provider", de.Provider, "err", de.Message)
			writeError(w, http.StatusInternalServerError, "failed to deliver notification")
			return
		}
		httpError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageEnvelope{
		Success:   true,
		Message:   "notification sent",
		MessageID: res.Reference,
	})
}

// History handles GET /notifications?phone=...&limit=...
func (h *NotificationHandler) History(w http.ResponseWriter, r *http.Request) {
	rawPhone := r.URL.Query().Get("phone")
	if rawPhone == "" {
		writeError(w, http.StatusBadRequest, "phone query parameter is required")
		return
	}
	limit := int32(defaultHistoryLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = int32(n)
	}

	entries, err := h.svc.History(r.Context(), rawPhone, limit)
	if err != nil {
		httpError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.MessageLog{}
	}
	writeJSON(w, http.StatusOK, HistoryEnvelope{Success: true, Data: entries})
}

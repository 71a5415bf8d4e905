package email

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/mailroom-io/mailroom/internal"
	"github.com/mailroom-io/mailroom/internal/auth"
	"github.com/mailroom-io/mailroom/internal/transport"
	"github.com/mailroom-io/mailroom/pkg/logger"
)

type ServiceAPI interface {
	Send(ctx context.Context, userID uuid.UUID, isAdmin bool, dto SendEmailDTO) (*SendResult, error)
	History(userID uuid.UUID, isAdmin bool, limit, offset int) ([]*SendLog, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// SendEmail handles POST /emails/send. The response always carries the
// success/message/error result shape the compose form consumes; the HTTP
// status distinguishes input errors, denials and system faults.
func (h *Handler) SendEmail(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteJSON(w, http.StatusUnauthorized, SendResult{Success: false, Error: "Unauthorized"})
		return
	}

	var dto SendEmailDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("SendEmail: invalid request body", "error", err)
		h.WriteJSON(w, http.StatusBadRequest, SendResult{Success: false, Error: "Invalid form data"})
		return
	}

	result, err := h.Service.Send(r.Context(), user.ID, user.IsAdmin(), dto)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			h.WriteJSON(w, appErr.StatusCode, SendResult{Success: false, Error: appErr.Message})
			return
		}
		h.Logger.Error("SendEmail: unexpected error", "error", err, "user_id", user.ID)
		h.WriteJSON(w, http.StatusInternalServerError, SendResult{Success: false, Error: "Internal server error"})
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

// GetHistory handles GET /emails/logs. Admins see every send, users only
// their own.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	limit := 20
	offset := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	logs, err := h.Service.History(user.ID, user.IsAdmin(), limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, SendLogsResponse{Logs: logs})
}

package identity

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/google/uuid"

	"github.com/mailroom-io/mailroom/internal/auth"
	"github.com/mailroom-io/mailroom/internal/transport"
	"github.com/mailroom-io/mailroom/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, actorID uuid.UUID, dto CreateIdentityDTO) (*SenderIdentity, error)
	ListFor(userID uuid.UUID, isAdmin bool) ([]*SenderIdentity, error)
	ToggleActive(ctx context.Context, actorID, id uuid.UUID) (*SenderIdentity, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// ListIdentities handles GET /identities. Admins see every identity, regular
// users only the active identities they hold a grant for.
func (h *Handler) ListIdentities(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	identities, err := h.Service.ListFor(user.ID, user.IsAdmin())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	resp := IdentitiesResponse{Identities: make([]IdentityResponse, 0, len(identities))}
	for _, ident := range identities {
		resp.Identities = append(resp.Identities, ident.ToResponse())
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateIdentity(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateIdentityDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateIdentity: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ident, err := h.Service.Create(r.Context(), user.ID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ident.ToResponse())
}

func (h *Handler) ToggleIdentity(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid identity ID")
		return
	}

	ident, err := h.Service.ToggleActive(r.Context(), user.ID, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ident.ToResponse())
}

func (h *Handler) DeleteIdentity(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid identity ID")
		return
	}

	if err := h.Service.Delete(r.Context(), user.ID, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package reconcile_anchor

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-StudioScheduler/internal/api/handlers"
	"github.com/m04kA/SMC-StudioScheduler/internal/api/middleware"
	"github.com/m04kA/SMC-StudioScheduler/internal/usecase/draft_booking"
)

const (
	op = "PUT /tenants/{id}/anchors/{token}"

	msgInvalidRequestBody = "некорректное тело запроса"
	msgAnchorNotFound     = "привязка не найдена"
)

// BoundsRequest границы отрисованного элемента
type BoundsRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// AnchorResponse HTTP response model
type AnchorResponse struct {
	Token   string         `json:"token"`
	Key     string         `json:"key"`
	Mounted bool           `json:"mounted"`
	Bounds  *BoundsRequest `json:"bounds,omitempty"`
}

type Handler struct {
	registry handlers.SessionRegistry
	logger   Logger
}

func NewHandler(registry handlers.SessionRegistry, logger Logger) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger,
	}
}

// Handle PUT /api/v1/tenants/{tenantId}/anchors/{token}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	var req BoundsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", op, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	sessionID, _ := middleware.GetSessionID(r.Context())
	entry, ok := handlers.ResolveSession(w, r, h.registry, sessionID, h.logger, op)
	if !ok {
		return
	}

	anchor, err := entry.Drafts.ReconcileAnchor(token, draft_booking.Rect{
		X: req.X, Y: req.Y, Width: req.Width, Height: req.Height,
	})
	if err != nil {
		if errors.Is(err, draft_booking.ErrAnchorNotFound) {
			h.logger.Warn("%s - Anchor not found: token=%s", op, token)
			handlers.RespondNotFound(w, msgAnchorNotFound)
			return
		}
		h.logger.Error("%s - Failed to reconcile anchor: token=%s, error=%v", op, token, err)
		handlers.RespondInternalError(w)
		return
	}

	resp := AnchorResponse{Token: anchor.Token, Key: anchor.Key, Mounted: anchor.IsMounted()}
	if anchor.Bounds != nil {
		resp.Bounds = &BoundsRequest{
			X: anchor.Bounds.X, Y: anchor.Bounds.Y, Width: anchor.Bounds.Width, Height: anchor.Bounds.Height,
		}
	}
	handlers.RespondJSON(w, http.StatusOK, resp)
}

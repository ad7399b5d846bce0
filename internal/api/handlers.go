// internal/api/handlers.go
package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"insight-service/internal/common/logger"
	"insight-service/internal/dispatch"
)

// Handler holds the dependencies shared by all HTTP endpoints.
type Handler struct {
	dispatcher *dispatch.Dispatcher
	registry   *dispatch.Registry
	service    string
	version    string
	logger     logger.Logger
}

func NewHandler(d *dispatch.Dispatcher, r *dispatch.Registry, service, version string, log logger.Logger) *Handler {
	return &Handler{
		dispatcher: d,
		registry:   r,
		service:    service,
		version:    version,
		logger:     log,
	}
}

// JSON writes a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}

// Error writes an error envelope without dispatching. Used for requests that
// never reach the dispatcher, such as malformed JSON bodies.
func (h *Handler) Error(w http.ResponseWriter, status int, actionCode, message string) {
	h.JSON(w, status, &dispatch.Envelope{
		Success:    false,
		ActionCode: actionCode,
		Data:       map[string]interface{}{},
		Error:      &message,
	})
}

// Root reports service identity, used by load balancer checks.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": h.service,
		"version": h.version,
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// ActionCodes returns the full action registry document so dashboard clients
// can discover which cards are available.
func (h *Handler) ActionCodes(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, h.registry.ExportDocument(h.version))
}

// PreviewAction runs the read-only analogue of an action without side effects.
func (h *Handler) PreviewAction(w http.ResponseWriter, r *http.Request) {
	actionCode := chi.URLParam(r, "action_code")
	listingID := r.URL.Query().Get("listing_id")
	ownerID := r.URL.Query().Get("owner_id")

	envelope := h.dispatcher.Preview(r.Context(), actionCode, listingID, ownerID)
	h.JSON(w, http.StatusOK, envelope)
}

// CardAction is the generic dispatch endpoint: the action code comes from the
// request body.
func (h *Handler) CardAction(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r, "")
	if !ok {
		return
	}
	h.dispatch(w, r, req)
}

// action returns a handler bound to a fixed action code. The typed endpoints
// exist so dashboard cards can call a stable URL per card; any action code in
// the body is overridden.
func (h *Handler) action(code string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := h.decode(w, r, code)
		if !ok {
			return
		}
		req.ActionCode = code
		h.dispatch(w, r, req)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, actionCode string) (*dispatch.Request, bool) {
	var req dispatch.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, actionCode, "invalid request body: "+err.Error())
		return nil, false
	}
	return &req, true
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, req *dispatch.Request) {
	envelope := h.dispatcher.Handle(r.Context(), req)
	h.JSON(w, http.StatusOK, envelope)
}

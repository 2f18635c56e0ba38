package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/middleware"
	"retailpulse/pkg/contracts/domain"
)

// SelectionRequest is the body of PUT /api/selection.
type SelectionRequest struct {
	Section string `json:"section" validate:"required,section"`
	View    string `json:"view" validate:"omitempty,view"`
}

// SelectionHandler reads and changes the currently selected view.
type SelectionHandler struct {
	service      SelectionServiceInterface
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewSelectionHandler creates a new selection handler
func NewSelectionHandler(service SelectionServiceInterface, validator *middleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *SelectionHandler {
	return &SelectionHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "selection_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the selection routes
func (h *SelectionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.GetSelection)
	r.With(middleware.ContentTypeValidator("application/json")).Put("/", h.PutSelection)
	return r
}

// GetSelection handles GET /api/selection
func (h *SelectionHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Current())
}

// PutSelection handles PUT /api/selection
func (h *SelectionHandler) PutSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := h.validator.DecodeJSON(w, r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	sel, err := h.service.Select(r.Context(), domain.Section(req.Section), req.View)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "selection updated",
		slog.String("section", string(sel.Section)),
		slog.String("view", sel.View),
		slog.Uint64("version", sel.Version))
	render.JSON(w, r, sel)
}

package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "retailpulse/internal/errors"
	"retailpulse/pkg/contracts/domain"
)

// ViewerHandler serves computed sections, views and the quality report.
type ViewerHandler struct {
	service      ViewerServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewViewerHandler creates a new viewer handler
func NewViewerHandler(service ViewerServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ViewerHandler {
	return &ViewerHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "viewer_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the viewer routes
func (h *ViewerHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/sections", h.ListSections)
	r.Get("/sections/{section}", h.GetSection)
	r.Get("/views/{view}", h.GetView)
	r.Get("/quality", h.GetQuality)
	r.Get("/run", h.GetRun)
	return r
}

// ListSections handles GET /api/sections
func (h *ViewerHandler) ListSections(w http.ResponseWriter, r *http.Request) {
	sections := h.service.Sections(r.Context())
	render.JSON(w, r, map[string]interface{}{
		"sections": sections,
		"count":    len(sections),
	})
}

// GetSection handles GET /api/sections/{section}
func (h *ViewerHandler) GetSection(w http.ResponseWriter, r *http.Request) {
	section := domain.Section(chi.URLParam(r, "section"))

	detail, err := h.service.Section(r.Context(), section)
	if err != nil {
		h.logger.WarnContext(r.Context(), "section unavailable",
			slog.String("section", string(section)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, detail)
}

// GetView handles GET /api/views/{view}
func (h *ViewerHandler) GetView(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "view")

	detail, err := h.service.View(r.Context(), name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, detail)
}

// GetQuality handles GET /api/quality
func (h *ViewerHandler) GetQuality(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Quality(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, detail)
}

// GetRun handles GET /api/run
func (h *ViewerHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Run(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, snap)
}

package http

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/services"
	"retailpulse/pkg/contracts/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var selectorTemplate = template.Must(template.ParseFS(templateFS, "templates/selector.html"))

// selectorPage is the data behind the selector template.
type selectorPage struct {
	AppName   string
	Sections  []services.SectionSummary
	Selection services.Selection
	Title     string
	Tables    []*domain.Table
	Failures  map[string]string
	Notice    string
}

// PageHandler renders the section/view selector.
type PageHandler struct {
	appName   string
	viewer    ViewerServiceInterface
	selection SelectionServiceInterface
	logger    *slog.Logger
}

// NewPageHandler creates the selector page handler
func NewPageHandler(appName string, viewer ViewerServiceInterface, selection SelectionServiceInterface, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		appName:   appName,
		viewer:    viewer,
		selection: selection,
		logger:    logger.With(slog.String("handler", "page")),
	}
}

// ServeSelector handles GET /. It shows the currently selected section, or
// just the selected view when one is set.
func (h *PageHandler) ServeSelector(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := h.buildPage(ctx)

	// Render into a buffer so a template error never sends half a page.
	var buf bytes.Buffer
	if err := selectorTemplate.Execute(&buf, page); err != nil {
		h.logger.ErrorContext(ctx, "failed to render selector page", slog.String("error", err.Error()))
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (h *PageHandler) buildPage(ctx context.Context) selectorPage {
	sel := h.selection.Current()
	page := selectorPage{
		AppName:   h.appName,
		Sections:  h.viewer.Sections(ctx),
		Selection: sel,
		Title:     sel.Section.Title(),
	}

	if sel.View != "" {
		detail, err := h.viewer.View(ctx, sel.View)
		if err != nil {
			page.Notice = noticeFor(err)
			return page
		}
		page.Title = detail.Title
		page.Tables = detail.Tables
		return page
	}

	detail, err := h.viewer.Section(ctx, sel.Section)
	if err != nil {
		page.Notice = noticeFor(err)
		return page
	}
	page.Tables = detail.Tables
	page.Failures = detail.Failures
	return page
}

// noticeFor strips the error kind prefix for display.
func noticeFor(err error) string {
	var appErr *apierrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

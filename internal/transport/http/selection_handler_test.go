package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apierrors "retailpulse/internal/errors"
	"retailpulse/internal/middleware"
	"retailpulse/internal/services"
	"retailpulse/internal/shared/testutil"
	"retailpulse/pkg/contracts/domain"
)

func selectionRouter(t *testing.T, svc SelectionServiceInterface) http.Handler {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	handler := NewSelectionHandler(svc, middleware.NewValidator(1024, logger), logger, apierrors.NewErrorHandler(logger, false))

	router := chi.NewRouter()
	router.Mount("/api/selection", handler.Routes())
	return router
}

func TestSelectionHandler_GetSelection(t *testing.T) {
	svc := new(MockSelectionService)
	svc.On("Current").Return(services.Selection{Section: domain.SectionPayments, View: "payment_method_revenue", Version: 3})

	rec := httptest.NewRecorder()
	selectionRouter(t, svc).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/selection", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "payment-trends", body["section"])
	assert.EqualValues(t, 3, body["version"])
}

func TestSelectionHandler_PutSelection(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		setupMock   func(*MockSelectionService)
		wantStatus  int
		wantCode    string
	}{
		{
			name:        "select view",
			body:        `{"section":"location-insights","view":"region_sales"}`,
			contentType: "application/json",
			setupMock: func(m *MockSelectionService) {
				m.On("Select", domain.SectionLocation, "region_sales").Return(services.Selection{
					Section: domain.SectionLocation, View: "region_sales", Version: 1, UpdatedAt: time.Now(),
				}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:        "select whole section",
			body:        `{"section":"location-insights"}`,
			contentType: "application/json",
			setupMock: func(m *MockSelectionService) {
				m.On("Select", domain.SectionLocation, "").Return(services.Selection{Section: domain.SectionLocation, Version: 1}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:        "view of another section",
			body:        `{"section":"location-insights","view":"season_sales"}`,
			contentType: "application/json",
			setupMock: func(m *MockSelectionService) {
				m.On("Select", domain.SectionLocation, "season_sales").Return(services.Selection{},
					apierrors.NewAppValidationError(`view "season_sales" is not part of section "location-insights"`))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   string(apierrors.ErrTypeValidation),
		},
		{
			name:        "unknown section",
			body:        `{"section":"weather"}`,
			contentType: "application/json",
			wantStatus:  http.StatusBadRequest,
			wantCode:    "VALIDATION_FAILED",
		},
		{
			name:        "unknown field",
			body:        `{"section":"location-insights","colour":"red"}`,
			contentType: "application/json",
			wantStatus:  http.StatusBadRequest,
			wantCode:    "INVALID_REQUEST",
		},
		{
			name:       "missing content type",
			body:       `{"section":"location-insights"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "MISSING_CONTENT_TYPE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockSelectionService)
			if tt.setupMock != nil {
				tt.setupMock(svc)
			}

			req := httptest.NewRequest(http.MethodPut, "/api/selection", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			selectionRouter(t, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			body := decodeBody(t, rec)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["error_code"])
			}
			if tt.setupMock == nil {
				svc.AssertNotCalled(t, "Select", mock.Anything, mock.Anything)
				return
			}
			svc.AssertExpectations(t)
		})
	}
}

// internal/handler/matching_handler_test.go
package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AryanKumarOfficial/bloodchain/internal/service"
)

func TestUpdateDonorLocation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "regular coordinates",
			body:       `{"latitude": 28.6139, "longitude": 77.2090}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "prime meridian longitude zero",
			body:       `{"latitude": 51.4779, "longitude": 0}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "equator latitude zero",
			body:       `{"latitude": 0, "longitude": -78.4678}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "both axes zero",
			body:       `{"latitude": 0, "longitude": 0}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "latitude out of range",
			body:       `{"latitude": 91, "longitude": 0}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "longitude out of range",
			body:       `{"latitude": 0, "longitude": 180.5}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing longitude",
			body:       `{"latitude": 12.9716}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing latitude",
			body:       `{"longitude": 77.5946}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := service.NewLocationCache(nil, time.Minute, zap.NewNop())
			h := NewMatchingHandler(nil, cache, zap.NewNop())

			router := gin.New()
			router.PUT("/donors/:id/location", h.UpdateDonorLocation)

			req := httptest.NewRequest(http.MethodPut, "/donors/donor-1/location",
				strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d (body %s)", tt.wantStatus, rec.Code, rec.Body.String())
			}

			_, cached := cache.Get(context.Background(), "donor-1")
			if tt.wantStatus == http.StatusOK && !cached {
				t.Error("Expected accepted location to be cached")
			}
			if tt.wantStatus != http.StatusOK && cached {
				t.Error("Expected rejected location to stay out of the cache")
			}
		})
	}
}

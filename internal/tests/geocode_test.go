package tests

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"dispatch/internal/geocode"
	"dispatch/internal/handler"
)

func geocodeRouter(t *testing.T, apiKey string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, err := geocode.NewService(apiKey)
	if err != nil {
		t.Fatalf("geocode service: %v", err)
	}
	h := handler.NewGeocodeHandler(svc, 33.7701, -118.1937)
	router := gin.New()
	router.GET("/v1/geocode/suggest", h.Suggest)
	router.GET("/v1/geocode/route", h.Route)
	return router
}

func TestGeocode_SuggestRequiresQuery(t *testing.T) {
	router := geocodeRouter(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/geocode/suggest", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without q, got %d", w.Code)
	}
}

func TestGeocode_SuggestUnavailableWithoutAPIKey(t *testing.T) {
	router := geocodeRouter(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/geocode/suggest?q=ocean+blvd", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when geocoding is not configured, got %d", w.Code)
	}
}

func TestGeocode_RouteRequiresAllCoordinates(t *testing.T) {
	router := geocodeRouter(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/geocode/route?from_lat=33.77&from_lng=-118.19", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 with a missing endpoint, got %d", w.Code)
	}
}

func TestGeocode_RouteUnavailableWithoutAPIKey(t *testing.T) {
	router := geocodeRouter(t, "")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/v1/geocode/route?from_lat=33.77&from_lng=-118.19&to_lat=33.80&to_lng=-118.15", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 when routing is not configured, got %d", w.Code)
	}
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dispatch/internal/geocode"
)

const defaultSuggestionLimit = 5

// GeocodeHandler serves address autocomplete for the booking form.
// Suggestions are biased toward the service region's center.
type GeocodeHandler struct {
	geocodeService *geocode.Service
	centerLat      float64
	centerLng      float64
}

// NewGeocodeHandler creates a new GeocodeHandler.
func NewGeocodeHandler(geocodeService *geocode.Service, centerLat, centerLng float64) *GeocodeHandler {
	return &GeocodeHandler{
		geocodeService: geocodeService,
		centerLat:      centerLat,
		centerLng:      centerLng,
	}
}

// SuggestionResponse is one address suggestion.
type SuggestionResponse struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// RouteResponse is the driving-distance estimate between two points.
type RouteResponse struct {
	Miles float64 `json:"miles"`
}

// Suggest handles GET /v1/geocode/suggest
func (h *GeocodeHandler) Suggest(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "q is required"})
		return
	}

	limit := defaultSuggestionLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	suggestions, err := h.geocodeService.Suggest(c.Request.Context(), query, h.centerLat, h.centerLng, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]SuggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		response = append(response, SuggestionResponse{Name: s.Name, Lat: s.Lat, Lng: s.Lng})
	}

	respondJSON(c, http.StatusOK, response)
}

// Route handles GET /v1/geocode/route. Returns the driving distance between
// two resolved points, a tighter estimate than the booking form's
// great-circle figure.
func (h *GeocodeHandler) Route(c *gin.Context) {
	fromLat, err1 := strconv.ParseFloat(c.Query("from_lat"), 64)
	fromLng, err2 := strconv.ParseFloat(c.Query("from_lng"), 64)
	toLat, err3 := strconv.ParseFloat(c.Query("to_lat"), 64)
	toLng, err4 := strconv.ParseFloat(c.Query("to_lng"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "from_lat, from_lng, to_lat and to_lng are required"})
		return
	}

	miles, err := h.geocodeService.DrivingMiles(c.Request.Context(), fromLat, fromLng, toLat, toLng)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, RouteResponse{Miles: miles})
}

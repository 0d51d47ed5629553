package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// CreateRideRequest is the HTTP request body for booking a ride. Coordinates
// are pointers so an omitted pair is distinguishable from (0, 0).
type CreateRideRequest struct {
	Pickup        string   `json:"pickup"`
	PickupLat     *float64 `json:"pickup_lat"`
	PickupLng     *float64 `json:"pickup_lng"`
	Dropoff       string   `json:"dropoff"`
	DropoffLat    *float64 `json:"dropoff_lat"`
	DropoffLng    *float64 `json:"dropoff_lng"`
	Phone         string   `json:"phone"`
	Email         string   `json:"email,omitempty"`
	RequestedAt   string   `json:"requested_at,omitempty"` // RFC 3339
	DistanceMiles float64  `json:"distance_miles"`
}

// CreateRideResponse is the HTTP response for booking a ride.
type CreateRideResponse struct {
	Success        bool    `json:"success"`
	RideID         string  `json:"ride_id"`
	Status         string  `json:"status"`
	Price          string  `json:"price"`
	Fare           float64 `json:"fare"`
	EstimatedMiles float64 `json:"estimated_miles"`
}

// ChatRequest is the HTTP request body for a passenger chat message.
type ChatRequest struct {
	Message string `json:"message"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID            string  `json:"id"`
	Pickup        string  `json:"pickup"`
	PickupLat     float64 `json:"pickup_lat"`
	PickupLng     float64 `json:"pickup_lng"`
	Dropoff       string  `json:"dropoff"`
	DropoffLat    float64 `json:"dropoff_lat"`
	DropoffLng    float64 `json:"dropoff_lng"`
	Phone         string  `json:"phone"`
	Email         string  `json:"email,omitempty"`
	DeclaredMiles float64 `json:"declared_miles"`
	ComputedMiles float64 `json:"computed_miles"`
	Fare          float64 `json:"fare"`
	Price         string  `json:"price"`
	Region        string  `json:"region"`
	Status        string  `json:"status"`
	StatusLabel   string  `json:"status_label"`
	DriverName    string  `json:"driver_name,omitempty"`
	DriverPhone   string  `json:"driver_phone,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

// TransitionResponse is one entry of a ride's audit trail.
type TransitionResponse struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
	At     string `json:"at"`
}

// MessageResponse is one entry of a ride's chat log.
type MessageResponse struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
	At     string `json:"at"`
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	requestedAt := time.Now()
	if req.RequestedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.RequestedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "requested_at must be RFC 3339"})
			return
		}
		requestedAt = parsed
	}

	svcReq := service.CreateRideRequest{
		Pickup:        req.Pickup,
		Dropoff:       req.Dropoff,
		Phone:         req.Phone,
		Email:         req.Email,
		RequestedAt:   requestedAt,
		DeclaredMiles: req.DistanceMiles,
	}
	if req.PickupLat != nil && req.PickupLng != nil {
		svcReq.PickupLat = *req.PickupLat
		svcReq.PickupLng = *req.PickupLng
		svcReq.HasPickup = true
	}
	if req.DropoffLat != nil && req.DropoffLng != nil {
		svcReq.DropoffLat = *req.DropoffLat
		svcReq.DropoffLng = *req.DropoffLng
		svcReq.HasDropoff = true
	}

	result, err := h.rideService.CreateRide(c.Request.Context(), svcReq)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, CreateRideResponse{
		Success:        true,
		RideID:         result.Ride.ID,
		Status:         string(result.Ride.Status),
		Price:          result.PriceLabel,
		Fare:           result.Fare,
		EstimatedMiles: result.EstimatedMiles,
	})
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

// GetAll handles GET /v1/rides
func (h *RideHandler) GetAll(c *gin.Context) {
	rides, err := h.rideService.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		response = append(response, toRideResponse(r))
	}

	respondJSON(c, http.StatusOK, response)
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	ride, err := h.rideService.CancelRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"success": true,
		"status":  string(ride.Status),
	})
}

// SendChat handles POST /v1/rides/:id/chat
func (h *RideHandler) SendChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.rideService.SendChat(c.Request.Context(), c.Param("id"), req.Message); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"success": true})
}

// GetMessages handles GET /v1/rides/:id/messages
func (h *RideHandler) GetMessages(c *gin.Context) {
	messages, err := h.rideService.GetMessages(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		response = append(response, MessageResponse{
			Sender: string(m.Sender),
			Text:   m.Text,
			At:     m.At.Format(time.RFC3339),
		})
	}

	respondJSON(c, http.StatusOK, response)
}

// GetTransitions handles GET /v1/rides/:id/transitions
func (h *RideHandler) GetTransitions(c *gin.Context) {
	transitions, err := h.rideService.GetTransitions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TransitionResponse, 0, len(transitions))
	for _, t := range transitions {
		response = append(response, TransitionResponse{
			Status: string(t.Status),
			Note:   t.Note,
			At:     t.At.Format(time.RFC3339),
		})
	}

	respondJSON(c, http.StatusOK, response)
}

func toRideResponse(r *domain.Ride) RideResponse {
	return RideResponse{
		ID:            r.ID,
		Pickup:        r.Pickup,
		PickupLat:     r.PickupLat,
		PickupLng:     r.PickupLng,
		Dropoff:       r.Dropoff,
		DropoffLat:    r.DropoffLat,
		DropoffLng:    r.DropoffLng,
		Phone:         r.Phone,
		Email:         r.Email,
		DeclaredMiles: r.DeclaredMiles,
		ComputedMiles: r.ComputedMiles,
		Fare:          r.Fare,
		Price:         r.PriceLabel,
		Region:        r.Region,
		Status:        string(r.Status),
		StatusLabel:   domain.Label(r.Status),
		DriverName:    r.DriverName,
		DriverPhone:   r.DriverPhone,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     r.UpdatedAt.Format(time.RFC3339),
	}
}

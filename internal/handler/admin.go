package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/domain"
	"dispatch/internal/service"
)

// AdminHandler handles the ops dashboard endpoints.
type AdminHandler struct {
	adminService *service.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// OverrideRequest is the HTTP request body for a manual status correction.
type OverrideRequest struct {
	Status      string `json:"status"`
	Note        string `json:"note,omitempty"`
	DriverName  string `json:"driver_name,omitempty"`
	DriverPhone string `json:"driver_phone,omitempty"`
}

// Override handles POST /v1/admin/rides/:id
func (h *AdminHandler) Override(c *gin.Context) {
	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.adminService.Override(c.Request.Context(), service.OverrideRequest{
		RideID:      c.Param("id"),
		Status:      domain.RideStatus(req.Status),
		Note:        req.Note,
		DriverName:  req.DriverName,
		DriverPhone: req.DriverPhone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toRideResponse(ride))
}

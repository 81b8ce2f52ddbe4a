package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type CreatePatientRequest struct {
	Name  string `json:"name" example:"Asha"`
	Email string `json:"email" example:"asha@example.com"`
}

// CreatePatient godoc
// @Summary      Register a patient
// @Description  Register a new patient. Names are stored whitespace-normalized.
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Security     BearerAuth
// @Param        request body CreatePatientRequest true "Patient"
// @Success      200 {object} util.APIResponse "Patient registered"
// @Failure      400 {object} util.APIResponse "Missing required fields"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /create_patient [post]
func (h *Handler) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	bindJSONLenient(c, &req)

	if _, err := h.bookings.CreatePatient(c.Request.Context(), principalOf(c), callerOf(c), req.Name, req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Patient registered successfully"})
}

// ListDoctors godoc
// @Summary      List doctors
// @Description  Return every seeded doctor as a bare JSON array
// @Tags         Doctor
// @Produce      json
// @Security     SessionCookie
// @Security     BearerAuth
// @Success      200 {array} model.Doctor
// @Failure      401 {array} model.Doctor "Empty list"
// @Router       /doctor [get]
func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.bookings.ListDoctors(c.Request.Context(), principalOf(c))
	respondList(c, doctors, err)
}

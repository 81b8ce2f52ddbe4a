package endpoint

import (
	"net/http"

	"github.com/ariebrainware/hospital-booking/model"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type DeleteAppointmentRequest struct {
	// ID accepts a JSON number or a numeric string.
	ID interface{} `json:"id" swaggertype:"integer" example:"1"`
}

// CreateAppointment godoc
// @Summary      Book an appointment
// @Description  Book an appointment for a registered patient and email a confirmation.
// @Description  A failed confirmation email never fails the booking.
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Security     BearerAuth
// @Param        request body model.AppointmentRequest true "Appointment"
// @Success      200 {object} util.APIResponse "Appointment booked"
// @Failure      400 {object} util.APIResponse "All fields are required"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /create_appointment [post]
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.AppointmentRequest
	bindJSONLenient(c, &req)

	booked, result, err := h.bookings.BookAppointment(c.Request.Context(), principalOf(c), callerOf(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	log.Debug().
		Uint("appointment_id", booked.Appointment.ID).
		Str("notification", result.String()).
		Msg("appointment booked")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Appointment booked successfully"})
}

// ListAppointments godoc
// @Summary      List appointments
// @Description  Return every appointment, newest first, as a bare JSON array
// @Tags         Appointment
// @Produce      json
// @Security     SessionCookie
// @Security     BearerAuth
// @Success      200 {array} model.Appointment
// @Failure      401 {array} model.Appointment "Empty list"
// @Router       /appointments [get]
func (h *Handler) ListAppointments(c *gin.Context) {
	appointments, err := h.bookings.ListAppointments(c.Request.Context(), principalOf(c))
	respondList(c, appointments, err)
}

// DeleteAppointment godoc
// @Summary      Delete an appointment
// @Description  Remove an appointment by id. Unknown ids succeed.
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Security     BearerAuth
// @Param        request body DeleteAppointmentRequest true "Appointment id"
// @Success      200 {object} util.APIResponse "Appointment deleted"
// @Failure      400 {object} util.APIResponse "Appointment ID required"
// @Failure      401 {object} util.APIResponse "Unauthorized"
// @Failure      500 {object} util.APIResponse "Server error"
// @Router       /delete_appointment [post]
func (h *Handler) DeleteAppointment(c *gin.Context) {
	var req DeleteAppointmentRequest
	bindJSONLenient(c, &req)

	if err := h.bookings.DeleteAppointment(c.Request.Context(), principalOf(c), callerOf(c), parseAppointmentID(req.ID)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted successfully"})
}

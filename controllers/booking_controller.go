package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
	"github.com/Hasan-Al-Banna-Nahid/retreat/services"
	"github.com/Hasan-Al-Banna-Nahid/retreat/utils"
)

type BookingController struct {
	BookingSvc *services.BookingService
}

func NewBookingController(svc *services.BookingService) *BookingController {
	return &BookingController{BookingSvc: svc}
}

func (ctrl *BookingController) GetBookings(c *gin.Context) {
	var f models.BookingFilters
	if err := c.ShouldBindQuery(&f); err != nil {
		utils.RespondError(c, models.NewValidationError("invalid query parameters", map[string]string{"query": err.Error()}))
		return
	}
	bookings, p, err := ctrl.BookingSvc.List(c.Request.Context(), f)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONPaginated(c, bookings, p)
}

func (ctrl *BookingController) GetBooking(c *gin.Context) {
	b, err := ctrl.BookingSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, b)
}

func (ctrl *BookingController) GetVenueBookings(c *gin.Context) {
	bookings, err := ctrl.BookingSvc.ListByVenue(c.Request.Context(), c.Param("venueId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bookings)
}

func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	var in models.CreateBookingInput
	if !bindJSON(c, &in) {
		return
	}
	b, err := ctrl.BookingSvc.Create(c.Request.Context(), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, b)
}

// UpdateBookingStatus answers 200 for a same-status request without touching
// the record.
func (ctrl *BookingController) UpdateBookingStatus(c *gin.Context) {
	var in struct {
		Status string `json:"status"`
	}
	if !bindJSON(c, &in) {
		return
	}
	status, err := models.ParseStatus(in.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	b, changed, err := ctrl.BookingSvc.UpdateStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	msg := "booking status updated"
	if !changed {
		msg = "booking already " + string(status)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": b, "message": msg})
}

func (ctrl *BookingController) DeleteBooking(c *gin.Context) {
	if err := ctrl.BookingSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "booking deleted")
}

func (ctrl *BookingController) GetStats(c *gin.Context) {
	st, err := ctrl.BookingSvc.Stats(c.Request.Context(), c.Query("venueId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, st)
}

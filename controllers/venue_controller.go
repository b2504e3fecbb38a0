package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
	"github.com/Hasan-Al-Banna-Nahid/retreat/services"
	"github.com/Hasan-Al-Banna-Nahid/retreat/utils"
)

type VenueController struct {
	VenueSvc *services.VenueService
}

func NewVenueController(svc *services.VenueService) *VenueController {
	return &VenueController{VenueSvc: svc}
}

func (ctrl *VenueController) GetVenues(c *gin.Context) {
	var f models.VenueFilters
	if err := c.ShouldBindQuery(&f); err != nil {
		utils.RespondError(c, models.NewValidationError("invalid query parameters", map[string]string{"query": err.Error()}))
		return
	}
	venues, p, err := ctrl.VenueSvc.List(c.Request.Context(), f)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONPaginated(c, venues, p)
}

func (ctrl *VenueController) GetVenue(c *gin.Context) {
	v, err := ctrl.VenueSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, v)
}

func (ctrl *VenueController) CreateVenue(c *gin.Context) {
	var in models.VenueInput
	if !bindJSON(c, &in) {
		return
	}
	v, err := ctrl.VenueSvc.Create(c.Request.Context(), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, v)
}

func (ctrl *VenueController) UpdateVenue(c *gin.Context) {
	var in models.VenueInput
	if !bindJSON(c, &in) {
		return
	}
	v, err := ctrl.VenueSvc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, v)
}

func (ctrl *VenueController) DeleteVenue(c *gin.Context) {
	if err := ctrl.VenueSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONMessage(c, http.StatusOK, "venue deleted")
}

// bindJSON reports a malformed body as a validation error.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondError(c, models.NewValidationError("invalid payload", map[string]string{"body": err.Error()}))
		return false
	}
	return true
}

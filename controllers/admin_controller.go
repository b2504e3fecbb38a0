package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hasan-Al-Banna-Nahid/retreat/models"
	"github.com/Hasan-Al-Banna-Nahid/retreat/services"
	"github.com/Hasan-Al-Banna-Nahid/retreat/utils"
)

type createAdminPayload struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type AdminController struct {
	AdminSvc *services.AdminService
}

func NewAdminController(svc *services.AdminService) *AdminController {
	return &AdminController{AdminSvc: svc}
}

func (ctrl *AdminController) GetAdmins(c *gin.Context) {
	admins, err := ctrl.AdminSvc.List(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, admins)
}

func (ctrl *AdminController) CreateAdmin(c *gin.Context) {
	var payload createAdminPayload
	if !bindJSON(c, &payload) {
		return
	}
	if payload.Username == "" || payload.Password == "" {
		utils.RespondError(c, models.NewValidationError("username and password required", nil))
		return
	}
	if payload.Role == "" {
		payload.Role = models.RoleViewer
	}
	admin, err := ctrl.AdminSvc.Create(c.Request.Context(), payload.FullName, payload.Username, payload.Password, payload.Role)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, admin)
}

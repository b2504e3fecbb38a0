package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hasan-Al-Banna-Nahid/retreat/auth"
	"github.com/Hasan-Al-Banna-Nahid/retreat/services"
	"github.com/Hasan-Al-Banna-Nahid/retreat/utils"
)

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthController struct {
	AdminSvc *services.AdminService
	Issuer   *auth.Issuer
}

func NewAuthController(svc *services.AdminService, issuer *auth.Issuer) *AuthController {
	return &AuthController{AdminSvc: svc, Issuer: issuer}
}

func (ctrl *AuthController) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload) {
		return
	}
	admin, err := ctrl.AdminSvc.Authenticate(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	token, exp, err := ctrl.Issuer.CreateAccessToken(admin)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": exp.UTC(),
		"admin": gin.H{
			"id":       admin.ID,
			"fullName": admin.FullName,
			"username": admin.Username,
			"role":     admin.Role,
		},
	})
}

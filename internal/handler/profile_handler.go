package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portal/internal/middleware"
	"portal/internal/service"
	"portal/pkg/response"
)

type ProfileHandler struct{}

func NewProfileHandler() *ProfileHandler {
	return &ProfileHandler{}
}

func (h *ProfileHandler) RegisterRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile", middleware.RequireAuth())
	{
		profile.PUT("", h.UpdateProfile)
		profile.PUT("/password", h.ChangePassword)
	}
}

// UpdateProfile godoc
// @Summary      Update profile
// @Description  Merges name, unit and email into the signed-in user. Stored locally only.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ProfileUpdate  true  "Profile fields"
// @Success      200      {object}  response.Response{data=model.User}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req service.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ws := middleware.GetWorkspace(c)
	user, err := ws.Session.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		ws.Notifications.Error("Gagal", "Gagal memperbarui profil")
		abortWithError(c, err)
		return
	}

	ws.Notifications.Success("Berhasil", "Profil berhasil diperbarui")
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// ChangePassword godoc
// @Summary      Change password
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        payload  body      service.PasswordChange  true  "Passwords"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /profile/password [put]
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	var req service.PasswordChange
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ws := middleware.GetWorkspace(c)
	if err := ws.Session.ChangePassword(req); err != nil {
		ws.Notifications.Error("Gagal", err.Error())
		abortWithError(c, err)
		return
	}

	ws.Notifications.Success("Berhasil", "Password berhasil diubah")
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Password berhasil diubah"}))
}

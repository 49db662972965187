package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portal/internal/middleware"
	"portal/internal/model"
	"portal/pkg/response"
)

type PenggunaHandler struct{}

func NewPenggunaHandler() *PenggunaHandler {
	return &PenggunaHandler{}
}

func (h *PenggunaHandler) RegisterRoutes(router *gin.RouterGroup) {
	pengguna := router.Group("/pengguna", middleware.RequireOperator())
	{
		pengguna.GET("", h.List)
		pengguna.POST("", h.Create)
		pengguna.PUT("/:id", h.Update)
		pengguna.DELETE("/:id", h.Delete)
	}
}

// List godoc
// @Summary      List users
// @Tags         pengguna
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.User}
// @Failure      403  {object}  response.Response
// @Router       /pengguna [get]
func (h *PenggunaHandler) List(c *gin.Context) {
	users, err := middleware.GetWorkspace(c).Pengguna.List(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, users))
}

// Create godoc
// @Summary      Add a user
// @Tags         pengguna
// @Accept       json
// @Produce      json
// @Param        payload  body      model.CreateUserRequest  true  "New user"
// @Success      201      {object}  response.Response{data=model.User}
// @Failure      400      {object}  response.Response
// @Router       /pengguna [post]
func (h *PenggunaHandler) Create(c *gin.Context) {
	var req model.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := middleware.GetWorkspace(c).Pengguna.Create(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, user))
}

// Update godoc
// @Summary      Edit a user
// @Tags         pengguna
// @Accept       json
// @Produce      json
// @Param        id       path      string                   true  "User ID"
// @Param        payload  body      model.UpdateUserRequest  true  "Changed fields"
// @Success      200      {object}  response.Response{data=model.User}
// @Failure      400      {object}  response.Response
// @Router       /pengguna/{id} [put]
func (h *PenggunaHandler) Update(c *gin.Context) {
	var req model.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := middleware.GetWorkspace(c).Pengguna.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// Delete godoc
// @Summary      Remove a user
// @Tags         pengguna
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  response.Response
// @Router       /pengguna/{id} [delete]
func (h *PenggunaHandler) Delete(c *gin.Context) {
	if err := middleware.GetWorkspace(c).Pengguna.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Pengguna berhasil dihapus"}))
}

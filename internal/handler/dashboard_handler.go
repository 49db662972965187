package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portal/internal/gateway"
	"portal/internal/middleware"
	"portal/pkg/response"
)

type DashboardHandler struct {
	gw gateway.Gateway
}

func NewDashboardHandler(gw gateway.Gateway) *DashboardHandler {
	return &DashboardHandler{gw: gw}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/dashboard", middleware.RequireAuth(), h.Summary)
	router.GET("/backend/health", h.BackendHealth)
}

// Summary godoc
// @Summary      Dashboard
// @Description  Backend totals with history fallback, plus approval and rejection rates
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  response.Response{data=service.DashboardSummary}
// @Failure      401  {object}  response.Response
// @Router       /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	summary, err := middleware.GetWorkspace(c).Dashboard.Summary(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// BackendHealth godoc
// @Summary      Backend health
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Response{data=gateway.HealthResponse}
// @Failure      502  {object}  response.Response
// @Router       /backend/health [get]
func (h *DashboardHandler) BackendHealth(c *gin.Context) {
	health, err := h.gw.Health(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, response.Error(http.StatusBadGateway, err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, health))
}

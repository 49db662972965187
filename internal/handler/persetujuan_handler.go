package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"portal/internal/middleware"
	"portal/pkg/response"
)

type PersetujuanHandler struct{}

func NewPersetujuanHandler() *PersetujuanHandler {
	return &PersetujuanHandler{}
}

func (h *PersetujuanHandler) RegisterRoutes(router *gin.RouterGroup) {
	persetujuan := router.Group("/persetujuan", middleware.RequireOperator())
	{
		persetujuan.GET("", h.Queue)
		persetujuan.GET("/:id", h.OpenDetail)
		persetujuan.DELETE("/:id", h.CloseDetail)
		persetujuan.PUT("/:id/status", h.UpdateStatus)
	}
}

type UpdateStatusRequest struct {
	StatusRequest string `json:"status_request" binding:"required,oneof=DIAJUKAN DISETUJUI DITOLAK DIPROSES SELESAI"`
	Keterangan    string `json:"keterangan"`
}

// Queue godoc
// @Summary      Approval queue
// @Description  Pending requests, or every request with all=true. Operators only.
// @Tags         persetujuan
// @Produce      json
// @Param        all  query     bool  false  "Include decided requests"
// @Success      200  {object}  response.Response{data=service.ApprovalQueue}
// @Failure      403  {object}  response.Response
// @Router       /persetujuan [get]
func (h *PersetujuanHandler) Queue(c *gin.Context) {
	persetujuan := middleware.GetWorkspace(c).Persetujuan
	if err := persetujuan.Load(c.Request.Context()); err != nil {
		abortWithError(c, err)
		return
	}

	queue, err := persetujuan.View(c.Query("all") == "true")
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, queue))
}

// OpenDetail godoc
// @Summary      Open a request
// @Tags         persetujuan
// @Produce      json
// @Param        id   path      int  true  "Request ID"
// @Success      200  {object}  response.Response{data=model.Request}
// @Failure      404  {object}  response.Response
// @Router       /persetujuan/{id} [get]
func (h *PersetujuanHandler) OpenDetail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	req, err := middleware.GetWorkspace(c).Persetujuan.OpenDetail(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

// CloseDetail godoc
// @Summary      Close the open request
// @Tags         persetujuan
// @Produce      json
// @Param        id   path      int  true  "Request ID"
// @Success      200  {object}  response.Response
// @Router       /persetujuan/{id} [delete]
func (h *PersetujuanHandler) CloseDetail(c *gin.Context) {
	middleware.GetWorkspace(c).Persetujuan.CloseDetail()
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": c.Param("id")}))
}

// UpdateStatus godoc
// @Summary      Decide on a request
// @Description  Sends the decision signed with the operator's name, then reloads the queue
// @Tags         persetujuan
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true  "Request ID"
// @Param        payload  body      UpdateStatusRequest  true  "Decision"
// @Success      200      {object}  response.Response{data=service.ApprovalQueue}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /persetujuan/{id}/status [put]
func (h *PersetujuanHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	persetujuan := middleware.GetWorkspace(c).Persetujuan
	if err := persetujuan.UpdateStatus(c.Request.Context(), id, req.StatusRequest, req.Keterangan); err != nil {
		abortWithError(c, err)
		return
	}

	queue, err := persetujuan.View(c.Query("all") == "true")
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, queue))
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"portal/internal/middleware"
	"portal/internal/model"
	"portal/pkg/response"
)

type PengajuanHandler struct{}

func NewPengajuanHandler() *PengajuanHandler {
	return &PengajuanHandler{}
}

func (h *PengajuanHandler) RegisterRoutes(router *gin.RouterGroup) {
	pengajuan := router.Group("/pengajuan", middleware.RequireAuth())
	{
		pengajuan.GET("/form", h.GetForm)
		pengajuan.DELETE("/form", h.ResetForm)
		pengajuan.PUT("/form/jenis", h.SetJenis)
		pengajuan.PUT("/form/keterangan", h.SetKeterangan)
		pengajuan.POST("/form/rows", h.AddRow)
		pengajuan.PUT("/form/rows/:index", h.SetRow)
		pengajuan.DELETE("/form/rows/:index", h.RemoveRow)
		pengajuan.POST("/submit", h.Submit)
		pengajuan.GET("/mine", h.MyRequests)
		pengajuan.GET("/:id", h.Detail)
	}
}

type SetJenisRequest struct {
	JenisRequest string `json:"jenis_request" binding:"required"`
}

type SetKeteranganRequest struct {
	Keterangan string `json:"keterangan"`
}

type AddRowRequest struct {
	JenisRequest string `json:"jenis_request" binding:"required"`
}

type SetRowRequest struct {
	JenisRequest string        `json:"jenis_request" binding:"required"`
	Row          model.FormRow `json:"row"`
}

// GetForm godoc
// @Summary      Draft pengajuan
// @Tags         pengajuan
// @Produce      json
// @Success      200  {object}  response.Response{data=model.FormView}
// @Router       /pengajuan/form [get]
func (h *PengajuanHandler) GetForm(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, middleware.GetWorkspace(c).Pengajuan.Form()))
}

// ResetForm godoc
// @Summary      Reset the draft
// @Tags         pengajuan
// @Produce      json
// @Success      200  {object}  response.Response{data=model.FormView}
// @Router       /pengajuan/form [delete]
func (h *PengajuanHandler) ResetForm(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, middleware.GetWorkspace(c).Pengajuan.Reset()))
}

// SetJenis godoc
// @Summary      Select the request kind
// @Tags         pengajuan
// @Accept       json
// @Produce      json
// @Param        payload  body      SetJenisRequest  true  "pengadaan, perbaikan or peminjaman"
// @Success      200      {object}  response.Response{data=model.FormView}
// @Failure      400      {object}  response.Response
// @Router       /pengajuan/form/jenis [put]
func (h *PengajuanHandler) SetJenis(c *gin.Context) {
	var req SetJenisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := middleware.GetWorkspace(c).Pengajuan.SetJenis(req.JenisRequest)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// SetKeterangan godoc
// @Summary      Set the common remark
// @Tags         pengajuan
// @Accept       json
// @Produce      json
// @Param        payload  body      SetKeteranganRequest  true  "Remark"
// @Success      200      {object}  response.Response{data=model.FormView}
// @Router       /pengajuan/form/keterangan [put]
func (h *PengajuanHandler) SetKeterangan(c *gin.Context) {
	var req SetKeteranganRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, middleware.GetWorkspace(c).Pengajuan.SetKeterangan(req.Keterangan)))
}

// AddRow godoc
// @Summary      Add an item row
// @Tags         pengajuan
// @Accept       json
// @Produce      json
// @Param        payload  body      AddRowRequest  true  "Variant"
// @Success      200      {object}  response.Response{data=model.FormView}
// @Failure      400      {object}  response.Response
// @Router       /pengajuan/form/rows [post]
func (h *PengajuanHandler) AddRow(c *gin.Context) {
	var req AddRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := middleware.GetWorkspace(c).Pengajuan.AddRow(req.JenisRequest)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// SetRow godoc
// @Summary      Edit an item row
// @Description  Only the fields present in row are changed
// @Tags         pengajuan
// @Accept       json
// @Produce      json
// @Param        index    path      int            true  "Row index"
// @Param        payload  body      SetRowRequest  true  "Row fields"
// @Success      200      {object}  response.Response{data=model.FormView}
// @Failure      400      {object}  response.Response
// @Router       /pengajuan/form/rows/{index} [put]
func (h *PengajuanHandler) SetRow(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid row index"))
		return
	}

	var req SetRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := middleware.GetWorkspace(c).Pengajuan.SetRow(req.JenisRequest, index, req.Row)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// RemoveRow godoc
// @Summary      Remove an item row
// @Description  The last remaining row is kept
// @Tags         pengajuan
// @Produce      json
// @Param        index          path      int     true  "Row index"
// @Param        jenis_request  query     string  true  "Variant"
// @Success      200            {object}  response.Response{data=model.FormView}
// @Failure      400            {object}  response.Response
// @Router       /pengajuan/form/rows/{index} [delete]
func (h *PengajuanHandler) RemoveRow(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid row index"))
		return
	}

	view, err := middleware.GetWorkspace(c).Pengajuan.RemoveRow(c.Query("jenis_request"), index)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// Submit godoc
// @Summary      Submit the draft
// @Tags         pengajuan
// @Produce      json
// @Success      201  {object}  response.Response{data=service.SubmitResult}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /pengajuan/submit [post]
func (h *PengajuanHandler) Submit(c *gin.Context) {
	result, err := middleware.GetWorkspace(c).Pengajuan.Submit(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// MyRequests godoc
// @Summary      Requests of the signed-in user
// @Tags         pengajuan
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Request}
// @Router       /pengajuan/mine [get]
func (h *PengajuanHandler) MyRequests(c *gin.Context) {
	requests, err := middleware.GetWorkspace(c).Pengajuan.MyRequests(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, requests))
}

// Detail godoc
// @Summary      Request detail
// @Tags         pengajuan
// @Produce      json
// @Param        id   path      int  true  "Request ID"
// @Success      200  {object}  response.Response{data=model.Request}
// @Failure      404  {object}  response.Response
// @Router       /pengajuan/{id} [get]
func (h *PengajuanHandler) Detail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	req, err := middleware.GetWorkspace(c).Pengajuan.Detail(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, req))
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid ID format"))
		return 0, false
	}
	return id, true
}

package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"portal/internal/middleware"
	"portal/internal/model"
	"portal/internal/service"
	"portal/pkg/pagination"
	"portal/pkg/response"
)

type RiwayatHandler struct {
	now func() time.Time
}

func NewRiwayatHandler() *RiwayatHandler {
	return &RiwayatHandler{now: time.Now}
}

func (h *RiwayatHandler) RegisterRoutes(router *gin.RouterGroup) {
	riwayat := router.Group("/riwayat", middleware.RequireAuth())
	{
		riwayat.GET("", h.List)
		riwayat.POST("/refresh", h.Refresh)
		riwayat.POST("/filter", h.Filter)
		riwayat.DELETE("/filter", h.ClearFilters)
		riwayat.POST("/search", h.Search)
		riwayat.GET("/export", h.Export)
	}
}

type RiwayatPage struct {
	Items      []model.HistoryEntry `json:"items"`
	Stats      model.Stats          `json:"stats"`
	Pagination pagination.Meta      `json:"pagination"`
	Loading    bool                 `json:"loading"`
	Error      string               `json:"error,omitempty"`
}

type SearchRequest struct {
	Term string `json:"term"`
}

func (h *RiwayatHandler) page(c *gin.Context, list []model.HistoryEntry) RiwayatPage {
	snap := middleware.GetWorkspace(c).Riwayat.Snapshot()
	items, meta := pagination.Slice(list, pagination.Parse(c))
	return RiwayatPage{
		Items:      items,
		Stats:      snap.Stats,
		Pagination: meta,
		Loading:    snap.Loading,
		Error:      snap.Error,
	}
}

// List godoc
// @Summary      Request history
// @Description  Current filtered history, loading it from the backend on first use
// @Tags         riwayat
// @Produce      json
// @Param        page   query     int  false  "Page number"     default(1)
// @Param        limit  query     int  false  "Items per page"  default(20)
// @Success      200    {object}  response.Response{data=RiwayatPage}
// @Failure      401    {object}  response.Response
// @Failure      502    {object}  response.Response
// @Router       /riwayat [get]
func (h *RiwayatHandler) List(c *gin.Context) {
	riwayat := middleware.GetWorkspace(c).Riwayat
	if !riwayat.Snapshot().Loaded {
		if err := riwayat.Load(c.Request.Context()); err != nil {
			status := statusFor(err)
			c.JSON(status, response.Error(status, riwayat.Snapshot().Error))
			return
		}
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.page(c, riwayat.Snapshot().Filtered)))
}

// Refresh godoc
// @Summary      Reload history
// @Tags         riwayat
// @Produce      json
// @Success      200  {object}  response.Response{data=RiwayatPage}
// @Failure      502  {object}  response.Response
// @Router       /riwayat/refresh [post]
func (h *RiwayatHandler) Refresh(c *gin.Context) {
	ws := middleware.GetWorkspace(c)
	if err := ws.Riwayat.Refresh(c.Request.Context()); err != nil {
		ws.Notifications.Warning("Gagal Memperbarui Data", "Terjadi kesalahan saat memperbarui data. Silakan coba lagi.")
		status := statusFor(err)
		c.JSON(status, response.Error(status, ws.Riwayat.Snapshot().Error))
		return
	}

	ws.Notifications.Success("Data Diperbarui", "Data riwayat telah diperbarui dengan informasi terbaru.")
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.page(c, ws.Riwayat.Snapshot().Filtered)))
}

// Filter godoc
// @Summary      Filter history
// @Description  Date range (both bounds, inclusive), unit substring and status. Always applied to the full list.
// @Tags         riwayat
// @Accept       json
// @Produce      json
// @Param        payload  body      model.HistoryFilter  true  "Criteria"
// @Success      200      {object}  response.Response{data=RiwayatPage}
// @Router       /riwayat/filter [post]
func (h *RiwayatHandler) Filter(c *gin.Context) {
	var filter model.HistoryFilter
	if err := c.ShouldBindJSON(&filter); err != nil {
		badRequest(c, err)
		return
	}

	ws := middleware.GetWorkspace(c)
	filtered := ws.Riwayat.Filter(filter)
	if len(filtered) == 0 {
		ws.Notifications.Warning("Filter Diterapkan", "Tidak ada data yang sesuai dengan kriteria filter yang dipilih.")
	} else {
		ws.Notifications.Info("Filter Diterapkan", fmt.Sprintf("Ditemukan %d data yang sesuai dengan filter.", len(filtered)))
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.page(c, filtered)))
}

// ClearFilters godoc
// @Summary      Clear history filters
// @Tags         riwayat
// @Produce      json
// @Success      200  {object}  response.Response{data=RiwayatPage}
// @Router       /riwayat/filter [delete]
func (h *RiwayatHandler) ClearFilters(c *gin.Context) {
	ws := middleware.GetWorkspace(c)
	list := ws.Riwayat.ClearFilters()
	ws.Notifications.Success("Filter Dihapus", "Semua filter telah dihapus dan menampilkan semua data.")
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.page(c, list)))
}

// Search godoc
// @Summary      Search history
// @Description  Case-insensitive match on unit, pemohon and jenis request; empty term clears
// @Tags         riwayat
// @Accept       json
// @Produce      json
// @Param        payload  body      SearchRequest  true  "Search term"
// @Success      200      {object}  response.Response{data=RiwayatPage}
// @Router       /riwayat/search [post]
func (h *RiwayatHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	list := middleware.GetWorkspace(c).Riwayat.Search(req.Term)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, h.page(c, list)))
}

// Export godoc
// @Summary      Export history
// @Description  CSV of the filtered history
// @Tags         riwayat
// @Produce      text/csv
// @Success      200  {file}    file
// @Failure      400  {object}  response.Response
// @Router       /riwayat/export [get]
func (h *RiwayatHandler) Export(c *gin.Context) {
	ws := middleware.GetWorkspace(c)
	data, count, err := ws.Riwayat.Export()
	if err != nil {
		message := err.Error()
		if !errors.Is(err, service.ErrNothingToExport) {
			message = "Terjadi kesalahan saat mengexport data. Silakan coba lagi."
		}
		ws.Notifications.Warning("Export Gagal", message)
		abortWithError(c, err)
		return
	}

	ws.Notifications.Success("Export Berhasil", fmt.Sprintf("Data berhasil diexport ke CSV dengan %d records.", count))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, ws.Riwayat.ExportFilename(h.now())))
	c.Header("X-Record-Count", fmt.Sprint(count))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

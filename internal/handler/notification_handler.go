package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"portal/internal/middleware"
	"portal/internal/websocket"
	"portal/pkg/response"
)

const eventNotificationSnapshot = "notification.snapshot"

type NotificationHandler struct {
	hub *websocket.Hub
}

func NewNotificationHandler(hub *websocket.Hub) *NotificationHandler {
	return &NotificationHandler{hub: hub}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/notifications")
	{
		notifications.GET("", h.List)
		notifications.DELETE("", h.ClearAll)
		notifications.DELETE("/:id", h.Dismiss)
	}
}

// List godoc
// @Summary      List notifications
// @Description  Returns the toast queue of the client in display order
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Notification}
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, middleware.GetWorkspace(c).Notifications.List()))
}

// Dismiss godoc
// @Summary      Dismiss a notification
// @Description  Starts the exit transition; immediate=true drops it at once
// @Tags         notifications
// @Produce      json
// @Param        id         path   string  true   "Notification ID"
// @Param        immediate  query  bool    false  "Skip the exit transition"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /notifications/{id} [delete]
func (h *NotificationHandler) Dismiss(c *gin.Context) {
	ws := middleware.GetWorkspace(c)
	id := c.Param("id")

	var ok bool
	if c.Query("immediate") == "true" {
		ok = ws.Notifications.Remove(id)
	} else {
		ok = ws.Notifications.Dismiss(id)
	}
	if !ok {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Notifikasi tidak ditemukan"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": id}))
}

// ClearAll godoc
// @Summary      Clear notifications
// @Tags         notifications
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /notifications [delete]
func (h *NotificationHandler) ClearAll(c *gin.Context) {
	middleware.GetWorkspace(c).Notifications.ClearAll()
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Semua notifikasi dihapus"}))
}

// Stream godoc
// @Summary      Notification stream
// @Description  Websocket carrying {event, data} frames; the first frame is the current queue
// @Tags         notifications
// @Router       /ws [get]
func (h *NotificationHandler) Stream(c *gin.Context) {
	ws := middleware.GetWorkspace(c)

	snapshot, err := json.Marshal(gin.H{"event": eventNotificationSnapshot, "data": ws.Notifications.List()})
	if err != nil {
		abortWithError(c, err)
		return
	}

	websocket.ServeWs(h.hub, c, ws.ID, snapshot)
}

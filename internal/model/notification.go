package model

import (
	"encoding/json"
	"time"
)

// Notification types
const (
	NotificationSuccess  = "success"
	NotificationError    = "error"
	NotificationWarning  = "warning"
	NotificationInfo     = "info"
	NotificationPending  = "pending"
	NotificationApproved = "approved"
	NotificationRejected = "rejected"
)

// Toast positions
const (
	PositionTopLeft      = "top-left"
	PositionTopCenter    = "top-center"
	PositionTopRight     = "top-right"
	PositionBottomLeft   = "bottom-left"
	PositionBottomCenter = "bottom-center"
	PositionBottomRight  = "bottom-right"
)

// ToastState is the lifecycle of a rendered notification
type ToastState string

const (
	ToastIdle       ToastState = "idle"
	ToastVisible    ToastState = "visible"
	ToastDismissing ToastState = "dismissing"
	ToastRemoved    ToastState = "removed"
)

type Notification struct {
	ID        string        `json:"id"`
	Type      string        `json:"type"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"-"`
	AutoClose bool          `json:"autoClose"`
	Position  string        `json:"position"`
	State     ToastState    `json:"state"`
	CreatedAt time.Time     `json:"created_at"`
}

// MarshalJSON renders the duration in milliseconds, as the browser expects
func (n Notification) MarshalJSON() ([]byte, error) {
	type alias Notification
	return json.Marshal(struct {
		alias
		Duration int64 `json:"duration"`
	}{alias: alias(n), Duration: n.Duration.Milliseconds()})
}

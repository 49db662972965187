package model

import (
	"encoding/json"
	"strconv"
	"time"
)

const (
	RoleUser     = "user"
	RoleOperator = "operator"
)

// FlexibleID accepts both JSON numbers and JSON strings. The backend uses
// UUIDs while older deployments still hand out integer ids.
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*id = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = FlexibleID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = FlexibleID(n.String())
	return nil
}

func (id FlexibleID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte(`""`), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id FlexibleID) String() string {
	return string(id)
}

// User mirrors the backend user object as the portal sees it
type User struct {
	ID        FlexibleID `json:"id"`
	Username  string     `json:"username"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Unit      string     `json:"unit"`
	Role      string     `json:"role"`
	Status    string     `json:"status,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Unit     string `json:"unit" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=user operator"`
}

// CreateUserRequest is the admin screen's add-user form. The validate tags
// are checked by the pengguna service so the screen can show per-field messages.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Unit     string `json:"unit" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=user operator"`
}

type UpdateUserRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Unit  string `json:"unit,omitempty"`
	Role  string `json:"role,omitempty" binding:"omitempty,oneof=user operator"`
}

package gateway

import (
	"bytes"
	"context"
	"encoding/json"

	"portal/internal/model"
)

//go:generate mockgen -source=gateway.go -destination=mock/gateway_mock.go -package=mock

// Gateway is the portal's view of the Web Work Request backend
type Gateway interface {
	Login(ctx context.Context, username, password string) (*LoginResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	CurrentUser(ctx context.Context) (*model.User, error)

	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	CreateUser(ctx context.Context, req model.CreateUserRequest) (*UserMutationResponse, error)
	UpdateUser(ctx context.Context, id string, req model.UpdateUserRequest) (*UserMutationResponse, error)
	DeleteUser(ctx context.Context, id string) (*MessageResponse, error)

	CreateRequest(ctx context.Context, payload model.RequestPayload) (*CreateRequestResponse, error)
	ListRequests(ctx context.Context, params ListRequestsParams) (*RequestList, error)
	MyRequests(ctx context.Context) ([]model.Request, error)
	GetRequest(ctx context.Context, id int64) (*model.Request, error)
	UpdateRequestStatus(ctx context.Context, id int64, update model.StatusUpdate) (*MessageResponse, error)
	DeleteRequest(ctx context.Context, id int64) (*MessageResponse, error)

	Health(ctx context.Context) (*HealthResponse, error)
	DashboardStats(ctx context.Context) (*model.DashboardStats, error)
}

// LoginResponse accepts both {success, token, user} and {token, user}
type LoginResponse struct {
	Success *bool       `json:"success,omitempty"`
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
	Message string      `json:"message,omitempty"`
}

type UserMutationResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

type MessageResponse struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message"`
}

type CreateRequestResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
	Request *model.Request `json:"request"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ListRequestsParams struct {
	Status string
	Page   int
	Limit  int
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// RequestList is the body of GET /requests. The backend answers with either
// a bare array or {data, pagination}.
type RequestList struct {
	Data       []model.Request `json:"data"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

func (l *RequestList) UnmarshalJSON(data []byte) error {
	if isJSONArray(data) {
		l.Pagination = nil
		return json.Unmarshal(data, &l.Data)
	}

	type envelope RequestList
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*l = RequestList(env)
	return nil
}

// decodeList accepts a bare JSON array or an object with a data array
func decodeList[T any](data []byte) ([]T, error) {
	items := []T{}
	if isJSONArray(data) {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var env struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Data != nil {
		items = env.Data
	}
	return items, nil
}

func isJSONArray(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}

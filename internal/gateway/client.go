package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"portal/internal/model"
)

type client struct {
	baseURL    string
	originURL  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient returns a Gateway talking JSON to the backend rooted at baseURL
// (for example http://localhost:8080/api).
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) (Gateway, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse backend url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("backend url %q must be absolute", baseURL)
	}

	return &client{
		baseURL:    u.String(),
		originURL:  u.Scheme + "://" + u.Host,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

func (c *client) do(ctx context.Context, method, endpoint string, body, out any) error {
	return c.doURL(ctx, method, c.baseURL+endpoint, endpoint, body, out)
}

func (c *client) doURL(ctx context.Context, method, target, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal request body")
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return errors.Wrapf(err, "build %s %s", method, endpoint)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("backend request failed", "method", method, "path", endpoint, "error", err)
		return errors.Wrapf(err, "%s %s", method, endpoint)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	c.logger.Debug("backend request",
		"method", method,
		"path", endpoint,
		"status", resp.StatusCode,
		"latency", time.Since(start),
	)
	if err != nil {
		return errors.Wrapf(err, "read %s %s", method, endpoint)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newHTTPError(resp.StatusCode, payload)
	}

	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = payload
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrapf(err, "decode %s %s", method, endpoint)
	}
	return nil
}

func (c *client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var res LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *client) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *client) CurrentUser(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *client) ListUsers(ctx context.Context) ([]model.User, error) {
	var raw []byte
	if err := c.do(ctx, http.MethodGet, "/users", nil, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []model.User{}, nil
	}
	users, err := decodeList[model.User](raw)
	if err != nil {
		return nil, errors.Wrap(err, "decode GET /users")
	}
	return users, nil
}

func (c *client) GetUser(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *client) CreateUser(ctx context.Context, req model.CreateUserRequest) (*UserMutationResponse, error) {
	var res UserMutationResponse
	if err := c.do(ctx, http.MethodPost, "/users", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *client) UpdateUser(ctx context.Context, id string, req model.UpdateUserRequest) (*UserMutationResponse, error) {
	var res UserMutationResponse
	if err := c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *client) DeleteUser(ctx context.Context, id string) (*MessageResponse, error) {
	var res MessageResponse
	if err := c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *client) CreateRequest(ctx context.Context, payload model.RequestPayload) (*CreateRequestResponse, error) {
	var res CreateRequestResponse
	if err := c.do(ctx, http.MethodPost, "/requests", payload, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *client) ListRequests(ctx context.Context, params ListRequestsParams) (*RequestList, error) {
	query := url.Values{}
	if params.Status != "" {
		query.Set("status", params.Status)
	}
	if params.Page > 0 {
		query.Set("page", strconv.Itoa(params.Page))
	}
	if params.Limit > 0 {
		query.Set("limit", strconv.Itoa(params.Limit))
	}

	endpoint := "/requests"
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	res := RequestList{Data: []model.Request{}}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &res); err != nil {
		return nil, err
	}
	if res.Data == nil {
		res.Data = []model.Request{}
	}
	return &res, nil
}

func (c *client) MyRequests(ctx context.Context) ([]model.Request, error) {
	var raw []byte
	if err := c.do(ctx, http.MethodGet, "/requests/my-requests", nil, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []model.Request{}, nil
	}
	requests, err := decodeList[model.Request](raw)
	if err != nil {
		return nil, errors.Wrap(err, "decode GET /requests/my-requests")
	}
	return requests, nil
}

func (c *client) GetRequest(ctx context.Context, id int64) (*model.Request, error) {
	var req model.Request
	if err := c.do(ctx, http.MethodGet, "/requests/"+strconv.FormatInt(id, 10), nil, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *client) UpdateRequestStatus(ctx context.Context, id int64, update model.StatusUpdate) (*MessageResponse, error) {
	var res MessageResponse
	endpoint := "/requests/" + strconv.FormatInt(id, 10) + "/status"
	if err := c.do(ctx, http.MethodPut, endpoint, update, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *client) DeleteRequest(ctx context.Context, id int64) (*MessageResponse, error) {
	var res MessageResponse
	if err := c.do(ctx, http.MethodDelete, "/requests/"+strconv.FormatInt(id, 10), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Health checks the backend's root /health, which lives outside the api base
func (c *client) Health(ctx context.Context) (*HealthResponse, error) {
	var res HealthResponse
	if err := c.doURL(ctx, http.MethodGet, c.originURL+"/health", "/health", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *client) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	var stats model.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/dashboard/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"portal/internal/model"
	"portal/internal/service"
	"portal/pkg/response"
)

const (
	// ClientCookie identifies the browser that owns a workspace
	ClientCookie = "portal_client"

	clientCookieMaxAge = 3600 * 24 * 365
	workspaceKey       = "workspace"
)

const accessDeniedMessage = "Akses Ditolak. Halaman ini hanya dapat diakses oleh operator."

// SetClientCookie stores the client id as an HttpOnly cookie.
// Secure deployments are cross-origin: SameSiteNone + Secure.
// Local development stays same-site: SameSiteLax.
func SetClientCookie(c *gin.Context, clientID string, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}

	c.SetSameSite(sameSite)
	c.SetCookie(ClientCookie, clientID, clientCookieMaxAge, "/", "", secure, true)
}

// ClientWorkspace resolves the caller's workspace from its client cookie,
// issuing a fresh id to browsers that have none.
func ClientWorkspace(registry *service.WorkspaceRegistry, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := c.Cookie(ClientCookie)
		if err != nil || uuid.Validate(clientID) != nil {
			clientID = uuid.NewString()
			SetClientCookie(c, clientID, secure)
		}

		c.Set(workspaceKey, registry.Get(c.Request.Context(), clientID))
		c.Next()
	}
}

// GetWorkspace returns the workspace bound by ClientWorkspace, or nil
func GetWorkspace(c *gin.Context) *service.Workspace {
	v, ok := c.Get(workspaceKey)
	if !ok {
		return nil
	}
	ws, _ := v.(*service.Workspace)
	return ws
}

// RequireAuth rejects requests whose workspace has no signed-in user
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws := GetWorkspace(c)
		if ws == nil || !ws.Session.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, service.ErrNotAuthenticated.Error()))
			return
		}
		user := ws.Session.User()
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, service.ErrNotAuthenticated.Error()))
			return
		}

		c.Set("userID", user.ID.String())
		c.Set("userRole", user.Role)
		c.Next()
	}
}

// RequireRole checks that the signed-in user holds one of allowedRoles.
// It implies RequireAuth.
func RequireRole(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws := GetWorkspace(c)
		if ws == nil || !ws.Session.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, service.ErrNotAuthenticated.Error()))
			return
		}

		if !ws.Session.HasRole(allowedRoles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, accessDeniedMessage))
			return
		}

		c.Next()
	}
}

// RequireOperator is RequireRole for the operator-only screens
func RequireOperator() gin.HandlerFunc {
	return RequireRole(model.RoleOperator)
}

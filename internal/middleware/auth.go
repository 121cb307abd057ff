package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/SAP-F-2025/suggestibility-service/internal/config"
	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/SAP-F-2025/suggestibility-service/internal/utils"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
)

// Gin context keys set by the auth middlewares
const (
	ActorKey    = "actor"
	UserIDKey   = "user_id"
	UserRoleKey = "user_role"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// TokenParser verifies a bearer token; *casdoorsdk.Client satisfies it
type TokenParser interface {
	ParseJwtToken(token string) (*casdoorsdk.Claims, error)
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// NewAuth builds the authentication middleware for the configured mode
func NewAuth(cfg config.AuthConfig, logger utils.Logger) (gin.HandlerFunc, error) {
	switch cfg.Mode {
	case config.AuthModeCasdoor:
		if cfg.CasdoorCertificate == "" {
			return nil, fmt.Errorf("casdoor auth requires CASDOOR_CERTIFICATE")
		}
		client := casdoorsdk.NewClient(
			cfg.CasdoorEndpoint,
			cfg.CasdoorClientID,
			cfg.CasdoorClientSecret,
			cfg.CasdoorCertificate,
			cfg.CasdoorOrganization,
			cfg.CasdoorApplication,
		)
		return CasdoorAuth(client, logger), nil
	case config.AuthModeHeader:
		logger.Warn("Header authentication enabled, identity headers are trusted as sent")
		return HeaderAuth(), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}

// CasdoorAuth authenticates a bearer JWT issued by Casdoor
func CasdoorAuth(parser TokenParser, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			abortUnauthenticated(c, "Missing bearer token")
			return
		}

		claims, err := parser.ParseJwtToken(token)
		if err != nil {
			logger.Warn("Rejected bearer token",
				"path", c.Request.URL.Path,
				"request_id", c.GetString(utils.RequestIDKey),
				"error", err)
			abortUnauthenticated(c, "Invalid token")
			return
		}

		actor := ActorFromClaims(claims)
		if actor.ID == "" {
			abortUnauthenticated(c, "Token carries no user id")
			return
		}
		setActor(c, actor)
		c.Next()
	}
}

// HeaderAuth trusts X-User-ID and X-User-Role, for deployments behind an
// authenticating gateway. A missing role means subject.
func HeaderAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if id == "" {
			abortUnauthenticated(c, "Missing "+HeaderUserID+" header")
			return
		}

		role := models.RoleSubject
		if raw := strings.TrimSpace(c.GetHeader(HeaderUserRole)); raw != "" {
			role = models.UserRole(strings.ToLower(raw))
			if !role.IsValid() {
				abortUnauthenticated(c, "Unknown role "+raw)
				return
			}
		}

		setActor(c, models.Actor{ID: id, Role: role})
		c.Next()
	}
}

// RequireRole rejects callers ranked below min
func RequireRole(min models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			abortUnauthenticated(c, "User not authenticated")
			return
		}
		if !actor.Role.AtLeast(min) {
			c.AbortWithStatusJSON(http.StatusForbidden, errorBody{
				Message: "Forbidden - insufficient permissions",
				Code:    "insufficient_role",
			})
			return
		}
		c.Next()
	}
}

// ActorFrom returns the caller stored by an auth middleware
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	value, exists := c.Get(ActorKey)
	if !exists {
		return models.Actor{}, false
	}
	actor, ok := value.(models.Actor)
	return actor, ok
}

// ActorFromClaims maps a Casdoor user onto an actor. Casdoor admins are admins;
// otherwise the highest known role name assigned to the user wins.
func ActorFromClaims(claims *casdoorsdk.Claims) models.Actor {
	actor := models.Actor{ID: claims.Id, Role: models.RoleSubject}
	if actor.ID == "" {
		actor.ID = claims.Name
	}

	if claims.IsAdmin {
		actor.Role = models.RoleAdmin
		return actor
	}
	for _, role := range claims.Roles {
		if role == nil {
			continue
		}
		candidate := models.UserRole(strings.ToLower(role.Name))
		if candidate.IsValid() && candidate.AtLeast(actor.Role) {
			actor.Role = candidate
		}
	}
	return actor
}

func setActor(c *gin.Context, actor models.Actor) {
	c.Set(ActorKey, actor)
	c.Set(UserIDKey, actor.ID)
	c.Set(UserRoleKey, actor.Role)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{
		Message: message,
		Code:    "unauthenticated",
	})
}

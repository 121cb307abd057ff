package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SAP-F-2025/suggestibility-service/internal/config"
	"github.com/SAP-F-2025/suggestibility-service/internal/models"
	"github.com/SAP-F-2025/suggestibility-service/internal/utils"
	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTokenParser struct {
	mock.Mock
}

func (m *mockTokenParser) ParseJwtToken(token string) (*casdoorsdk.Claims, error) {
	args := m.Called(token)
	if claims := args.Get(0); claims != nil {
		return claims.(*casdoorsdk.Claims), args.Error(1)
	}
	return nil, args.Error(1)
}

func discardLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func claimsFor(id string, admin bool, roles ...string) *casdoorsdk.Claims {
	claims := &casdoorsdk.Claims{}
	claims.Id = id
	claims.Name = "name-" + id
	claims.IsAdmin = admin
	for _, r := range roles {
		claims.Roles = append(claims.Roles, &casdoorsdk.Role{Name: r})
	}
	return claims
}

func newRouter(auth gin.HandlerFunc, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := append([]gin.HandlerFunc{auth}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		actor, _ := ActorFrom(c)
		c.JSON(http.StatusOK, actor)
	})
	router.GET("/whoami", handlers...)
	return router
}

func serve(router *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHeaderAuth(t *testing.T) {
	router := newRouter(HeaderAuth())

	tests := []struct {
		name    string
		headers map[string]string
		status  int
		body    string
	}{
		{"missing id", map[string]string{}, http.StatusUnauthorized, "unauthenticated"},
		{"default role", map[string]string{HeaderUserID: "u1"}, http.StatusOK, `"role":"subject"`},
		{"clinician", map[string]string{HeaderUserID: "u2", HeaderUserRole: "Clinician"}, http.StatusOK, `"role":"clinician"`},
		{"unknown role", map[string]string{HeaderUserID: "u3", HeaderUserRole: "root"}, http.StatusUnauthorized, "Unknown role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, tt.headers)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestCasdoorAuth(t *testing.T) {
	parser := new(mockTokenParser)
	parser.On("ParseJwtToken", "good").Return(claimsFor("user-1", false, "clinician"), nil)
	parser.On("ParseJwtToken", "bad").Return(nil, errors.New("signature is invalid"))

	router := newRouter(CasdoorAuth(parser, discardLogger()))

	w := serve(router, map[string]string{"Authorization": "Bearer good"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"user-1","role":"clinician"}`, w.Body.String())

	w = serve(router, map[string]string{"Authorization": "Bearer bad"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(router, map[string]string{"Authorization": "Basic abc"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(router, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	parser.AssertNumberOfCalls(t, "ParseJwtToken", 2)
}

func TestActorFromClaims(t *testing.T) {
	assert.Equal(t, models.Actor{ID: "a", Role: models.RoleAdmin}, ActorFromClaims(claimsFor("a", true)))
	assert.Equal(t, models.Actor{ID: "b", Role: models.RoleSubject}, ActorFromClaims(claimsFor("b", false, "staff")))
	assert.Equal(t, models.Actor{ID: "c", Role: models.RoleAdmin}, ActorFromClaims(claimsFor("c", false, "admin", "clinician")))
	assert.Equal(t, models.Actor{ID: "name-", Role: models.RoleSubject}, ActorFromClaims(claimsFor("", false)))
}

func TestRequireRole(t *testing.T) {
	router := newRouter(HeaderAuth(), RequireRole(models.RoleClinician))

	w := serve(router, map[string]string{HeaderUserID: "s", HeaderUserRole: "subject"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = serve(router, map[string]string{HeaderUserID: "c", HeaderUserRole: "clinician"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, map[string]string{HeaderUserID: "a", HeaderUserRole: "admin"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNewAuth(t *testing.T) {
	_, err := NewAuth(config.AuthConfig{Mode: config.AuthModeCasdoor}, discardLogger())
	assert.Error(t, err)

	_, err = NewAuth(config.AuthConfig{Mode: "ldap"}, discardLogger())
	assert.Error(t, err)

	auth, err := NewAuth(config.AuthConfig{Mode: config.AuthModeHeader}, discardLogger())
	require.NoError(t, err)
	assert.NotNil(t, auth)
}

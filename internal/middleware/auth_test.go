package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eveningmall/internal/models"
	"eveningmall/internal/security"
)

const secret = "test-secret"

func token(t *testing.T, role string, usid int64) string {
	raw, err := security.IssueToken(secret, time.Hour, security.Identity{
		LoginID: primitive.NewObjectID(), USID: usid, Role: role,
	})
	require.NoError(t, err)
	return "Bearer " + raw
}

func router(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/", mw, func(c *gin.Context) {
		id, _ := IdentityFrom(c)
		c.JSON(http.StatusOK, gin.H{"usid": id.USID})
	})
	return r
}

func serve(r *gin.Engine, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAdminAuth(t *testing.T) {
	r := router(AdminAuth(secret))

	assert.Equal(t, http.StatusUnauthorized, serve(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer abc").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, token(t, models.RoleUser, 1111)).Code)
	assert.Equal(t, http.StatusOK, serve(r, token(t, models.RoleAdmin, 0)).Code)
}

func TestUserAuthRequiresProfile(t *testing.T) {
	r := router(UserAuth(secret))

	assert.Equal(t, http.StatusForbidden, serve(r, token(t, models.RoleAdmin, 0)).Code)

	w := serve(r, token(t, models.RoleUser, 1111))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"usid":1111}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestOptionalAuth(t *testing.T) {
	r := router(OptionalAuth(secret))

	w := serve(r, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"usid":0}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, serve(r, "Bearer junk").Code)
	assert.JSONEq(t, `{"usid":1111}`, serve(r, token(t, models.RoleUser, 1111)).Body.String())
}

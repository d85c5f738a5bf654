package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classtrack/participation-api/internal/api/middleware"
	"github.com/classtrack/participation-api/internal/pkg/jwthelper"
)

const testSigningKey = "test-signing-key"

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/protected",
		middleware.NewAuthenticator(testSigningKey).VerifyJWT(),
		func(ctx *gin.Context) {
			userID := ctx.GetUint(middleware.CtxKeyUserID)
			ctx.JSON(http.StatusOK, gin.H{"user_id": userID})
		})

	return router
}

func TestVerifyJWT(t *testing.T) {
	router := newAuthRouter()

	token, err := jwthelper.GenerateToken([]byte(testSigningKey), 42, "test-agent")
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{
			name:       "valid token",
			header:     "Bearer " + token,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing header",
			header:     "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not a bearer token",
			header:     "Basic " + token,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			header:     "Bearer not.a.token",
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestVerifyJWTRejectsWrongKey(t *testing.T) {
	router := newAuthRouter()

	token, err := jwthelper.GenerateToken([]byte("some-other-key"), 42, "test-agent")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

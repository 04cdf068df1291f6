package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nutriplat/coaching-api/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func signToken(t *testing.T, userID primitive.ObjectID, role domain.Role, expiresIn time.Duration) string {
	t.Helper()
	claims := &jwtClaims{
		UserID: userID.Hex(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func protectedRouter(roles ...domain.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(testSecret)}
	if len(roles) > 0 {
		handlers = append(handlers, RoleMiddleware(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		userID, err := getUserIDFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, err.Error())
			return
		}
		role, _ := getUserRoleFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": userID.Hex(), "role": role})
	})
	router.GET("/secure", handlers...)
	return router
}

func doRequest(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/secure", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	router := protectedRouter()
	w := doRequest(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	router := protectedRouter()
	assert.Equal(t, http.StatusUnauthorized, doRequest(router, "Basic abc123").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(router, "Bearer").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(router, "Bearer not-a-jwt").Code)
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	router := protectedRouter()
	token := signToken(t, primitive.NewObjectID(), domain.RoleClient, -time.Minute)
	w := doRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareWrongSecret(t *testing.T) {
	router := protectedRouter()
	claims := &jwtClaims{
		UserID: primitive.NewObjectID().Hex(),
		Role:   domain.RoleClient,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	w := doRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	router := protectedRouter()
	userID := primitive.NewObjectID()
	token := signToken(t, userID, domain.RoleTrainer, time.Hour)

	w := doRequest(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.Hex())
	assert.Contains(t, w.Body.String(), string(domain.RoleTrainer))
}

func TestRoleMiddleware(t *testing.T) {
	router := protectedRouter(domain.RoleNutritionist, domain.RoleAdmin)

	allowed := signToken(t, primitive.NewObjectID(), domain.RoleNutritionist, time.Hour)
	assert.Equal(t, http.StatusOK, doRequest(router, "Bearer "+allowed).Code)

	denied := signToken(t, primitive.NewObjectID(), domain.RoleClient, time.Hour)
	assert.Equal(t, http.StatusForbidden, doRequest(router, "Bearer "+denied).Code)
}

package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pantrybook/backend/internal/middleware"
	"github.com/pantrybook/backend/internal/model"
	"github.com/pantrybook/backend/internal/service"
)

type testEnv struct {
	router    *gin.Engine
	db        *gorm.DB
	auth      *service.AuthService
	users     *service.UserService
	recipes   *service.RecipeService
	uploadDir string
}

// setupTestEnv wires handlers against an in-memory sqlite database and a
// temp-dir image store, mirroring the production route table.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Recipe{}))

	users := service.NewUserService(db)
	auth := service.NewAuthService(users, "test-secret")
	recipes := service.NewRecipeService(db)

	uploadDir := t.TempDir()
	images, err := service.NewLocalImageStore(uploadDir, zap.NewNop())
	require.NoError(t, err)

	authHandler := NewAuthHandler(auth, users, zap.NewNop())
	recipeHandler := NewRecipeHandler(recipes, images, zap.NewNop())

	router := gin.New()
	router.Use(gin.Recovery())
	apiGroup := router.Group("/api")
	authHandler.RegisterRoutes(apiGroup)
	protected := apiGroup.Group("")
	protected.Use(middleware.AuthMiddleware(auth))
	{
		authHandler.RegisterProtectedRoutes(protected)
		recipeHandler.RegisterRoutes(protected, nil, nil)
	}

	return &testEnv{
		router:    router,
		db:        db,
		auth:      auth,
		users:     users,
		recipes:   recipes,
		uploadDir: uploadDir,
	}
}

// createUserAndToken registers a fresh user and returns its id and a valid
// bearer token.
func createUserAndToken(t *testing.T, env *testEnv) (string, string) {
	t.Helper()

	email := fmt.Sprintf("cook+%s@example.com", uuid.New().String())
	token, err := env.auth.Register(context.Background(), "Test", "Cook", email, "testpassword1")
	require.NoError(t, err)

	var user model.User
	require.NoError(t, env.db.Where("email = ?", email).First(&user).Error)
	return user.ID, token
}

type uploadFile struct {
	field       string
	name        string
	contentType string
	content     []byte
}

// multipartBody encodes form fields plus an optional file part.
func multipartBody(t *testing.T, fields map[string]string, file *uploadFile) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, file.field, file.name))
		h.Set("Content-Type", file.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

// doMultipart performs an authenticated multipart request.
func doMultipart(t *testing.T, env *testEnv, method, path, token string, fields map[string]string, file *uploadFile) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, fields, file)
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// doRequest performs an authenticated request without a body.
func doRequest(t *testing.T, env *testEnv, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

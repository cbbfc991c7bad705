package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pantrybook/backend/internal/api"
	"github.com/pantrybook/backend/internal/database"
	"github.com/pantrybook/backend/internal/middleware"
	"github.com/pantrybook/backend/internal/model"
	"github.com/pantrybook/backend/internal/service"
)

// setupPostgres starts a throwaway postgres container and returns a migrated
// gorm handle. Skips when no container runtime is available.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "testuser",
				"POSTGRES_PASSWORD": "testpass",
				"POSTGRES_DB":       "testdb",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections"),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("container runtime not available: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mappedPort, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=testuser password=testpass dbname=testdb sslmode=disable",
		host, mappedPort.Port())
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func setupRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := service.NewUserService(db)
	auth := service.NewAuthService(users, "test-secret")
	recipes := service.NewRecipeService(db)
	images, err := service.NewLocalImageStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	authHandler := api.NewAuthHandler(auth, users, zap.NewNop())
	recipeHandler := api.NewRecipeHandler(recipes, images, zap.NewNop())

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
	return router
}

func TestRecipeLifecycleAgainstPostgres(t *testing.T) {
	db := setupPostgres(t)
	router := setupRouter(t, db)

	// register
	regBody, _ := json.Marshal(map[string]string{
		"first_name": "Ada",
		"email":      "ada@example.com",
		"password":   "supersecret1",
	})
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(regBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var reg struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))

	// create
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("title", "Chocolate Cake"))
	require.NoError(t, mw.WriteField("description", "rich"))
	require.NoError(t, mw.WriteField("category", "dessert"))
	require.NoError(t, mw.WriteField("ingredients", `["2 cups flour","1 cup cocoa"]`))
	require.NoError(t, mw.WriteField("instructions", `["mix","bake"]`))
	require.NoError(t, mw.Close())

	req = httptest.NewRequest("POST", "/api/recipes", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+reg.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created model.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotZero(t, created.ID)
	idPath := "/api/recipes/" + strconv.FormatUint(uint64(created.ID), 10)

	// search hits on description substring
	req = httptest.NewRequest("GET", "/api/recipes?search=RICH", nil)
	req.Header.Set("Authorization", "Bearer "+reg.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var list []model.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)

	// partial update
	body = &bytes.Buffer{}
	mw = multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("title", "Devil's Food Cake"))
	require.NoError(t, mw.Close())

	req = httptest.NewRequest("PUT", idPath, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+reg.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated model.Recipe
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Devil's Food Cake", updated.Title)
	assert.Equal(t, "rich", updated.Description)

	// delete
	req = httptest.NewRequest("DELETE", idPath, nil)
	req.Header.Set("Authorization", "Bearer "+reg.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest("GET", idPath, nil)
	req.Header.Set("Authorization", "Bearer "+reg.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

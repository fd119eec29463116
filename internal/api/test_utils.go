package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kochbuch/backend/internal/database"
	"github.com/kochbuch/backend/internal/model"
)

// SetupTestDB opens an in-memory sqlite database scoped to one test and runs
// the migrations against it.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// cache=shared keeps the in-memory database alive across the pooled
	// connections gorm opens; the test name keeps parallel tests apart.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// SetupTestRouter creates a router wired against a fresh test database,
// without rate limiting or image storage.
func SetupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := SetupTestDB(t)

	router := gin.New()
	router.Use(gin.Recovery())
	SetupAPI(router, db, nil, nil)

	return router, db
}

// PerformRequest is a helper function to make HTTP requests in tests.
func PerformRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		req = httptest.NewRequest(method, path, bytes.NewBuffer(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	router.ServeHTTP(w, req)
	return w
}

// PerformUpload posts a multipart form with one file part named "file",
// carrying the given content type.
func PerformUpload(router *gin.Engine, path, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		panic(err)
	}
	if _, err := part.Write(data); err != nil {
		panic(err)
	}
	if err := writer.Close(); err != nil {
		panic(err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	router.ServeHTTP(w, req)
	return w
}

// CreateTestRecipe stores a recipe directly through gorm and returns it.
func CreateTestRecipe(t *testing.T, db *gorm.DB, recipe model.Recipe) model.Recipe {
	t.Helper()
	if err := db.Create(&recipe).Error; err != nil {
		t.Fatalf("failed to create test recipe: %v", err)
	}
	return recipe
}

package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-learnhub/internal/content"
	"github.com/localnerve/jam-build-learnhub/internal/database"
	"github.com/localnerve/jam-build-learnhub/internal/handlers"
	"github.com/localnerve/jam-build-learnhub/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testProject  = "learnhub-test"
	testDatabase = "learnhub"
)

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	tokens   *services.TokenIssuer
	accounts *fakeAccounts
}

type fakeAccounts struct {
	passwords map[string]string
	ids       map[string]string
}

func (f *fakeAccounts) SignUp(email, password string) (string, error) {
	if _, ok := f.passwords[email]; ok {
		return "", services.ErrEmailInUse
	}
	f.passwords[email] = password
	f.ids[email] = "u" + string(rune('a'+len(f.ids)))
	return f.ids[email], nil
}

func (f *fakeAccounts) Login(email, password string) (string, error) {
	if pw, ok := f.passwords[email]; !ok || pw != password {
		return "", services.ErrInvalidCredentials
	}
	return f.ids[email], nil
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	files, err := services.NewFileStore(db, t.TempDir(), 1<<20)
	if err != nil {
		t.Fatalf("Failed to create file store: %v", err)
	}

	env := &testEnv{
		db:       db,
		tokens:   services.NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour, time.Minute),
		accounts: &fakeAccounts{passwords: map[string]string{}, ids: map[string]string{}},
	}

	env.app = fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	handlers.Register(env.app, handlers.Deps{
		DB:         db,
		ProjectID:  testProject,
		DatabaseID: testDatabase,
		Files:      files,
		Tokens:     env.tokens,
		Accounts:   env.accounts,
	})
	env.app.Use(handlers.NotFound)

	return env
}

// userToken creates a profile with role and returns a bearer token for it
func (e *testEnv) userToken(t *testing.T, userID, role string) string {
	t.Helper()

	_, err := services.CreateDocument(e.db, services.CreateInput{
		Collection: content.Users,
		DocumentID: userID,
		OwnerID:    userID,
		Data: map[string]interface{}{
			"name":   userID,
			"email":  userID + "@example.com",
			"role":   role,
			"active": true,
		},
	})
	if err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}

	token, _, err := e.tokens.IssueSession(userID)
	if err != nil {
		t.Fatalf("Failed to issue session: %v", err)
	}
	return token
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-Project-Id", testProject)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to execute request: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return result
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status %d, got %d. Body: %s", want, resp.StatusCode, body)
	}
}

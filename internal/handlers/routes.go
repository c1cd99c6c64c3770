package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-learnhub/internal/content"
	"github.com/localnerve/jam-build-learnhub/internal/middleware"
	"github.com/localnerve/jam-build-learnhub/internal/services"
	"github.com/localnerve/jam-build-learnhub/internal/types"
	"gorm.io/gorm"
)

// Deps carries everything the API routes need
type Deps struct {
	DB         *gorm.DB
	ProjectID  string
	DatabaseID string
	Files      *services.FileStore
	Tokens     *services.TokenIssuer
	Accounts   services.Accounts
	Sessions   services.SessionValidator
}

// Register mounts the API under /api.
// The health route is mounted ahead of the project check so probes need no headers.
func Register(app *fiber.App, deps Deps) {
	health := &HealthHandler{DB: deps.DB}
	app.Get("/api/health", health.Health)

	auth := &middleware.Authenticator{
		DB:       deps.DB,
		Tokens:   deps.Tokens,
		Sessions: deps.Sessions,
	}
	admin := auth.Require(content.RoleAdmin)

	api := app.Group("/api")
	api.Use(middleware.ProjectMiddleware(deps.ProjectID))

	// Document database routes
	documents := &DocumentHandler{DB: deps.DB, DatabaseID: deps.DatabaseID}
	docs := api.Group("/databases/:database/collections/:collection/documents")
	docs.Get("/", auth.Optional(), documents.ListDocuments)
	docs.Get("/:id", auth.Optional(), documents.GetDocument)
	docs.Post("/", auth.Require(), documents.CreateDocument)
	docs.Patch("/:id", auth.Require(), documents.UpdateDocument)
	docs.Delete("/:id", admin, documents.DeleteDocument)

	// Storage routes
	files := &FileHandler{DB: deps.DB, Store: deps.Files, Tokens: deps.Tokens}
	storage := api.Group("/storage/buckets/:bucket/files")
	storage.Post("/", admin, files.CreateFile)
	storage.Get("/:id", files.GetFile)
	storage.Get("/:id/view", auth.Optional(), files.ViewFile)
	storage.Get("/:id/download", auth.Optional(), files.DownloadFile)
	storage.Post("/:id/token", auth.Require(), files.CreateFileToken)
	storage.Delete("/:id", admin, files.DeleteFile)

	// Account routes
	accounts := &AccountHandler{DB: deps.DB, Accounts: deps.Accounts, Tokens: deps.Tokens}
	api.Post("/account", accounts.CreateAccount)
	api.Post("/account/sessions", accounts.CreateSession)
	api.Get("/account", auth.Require(), accounts.GetAccount)
	api.Patch("/users/:id/status", admin, accounts.SetUserStatus)
}

// NotFound answers any route nothing else matched
func NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   "[404] Resource Not Found",
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      "not_found",
	})
}

// ErrorHandler renders errors returned from handlers and middleware in the
// standard envelope
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	var fiberErr *fiber.Error
	var customErr *types.CustomError
	switch {
	case errors.As(err, &customErr):
		code = customErr.Code
		message = customErr.Message
		errorType = customErr.Type
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	}

	versionError := false
	if errors.Is(err, services.ErrVersion) || strings.HasPrefix(message, "E_VERSION") {
		versionError = true
		errorType = "version"
		code = fiber.StatusConflict
	}

	return c.Status(code).JSON(fiber.Map{
		"status":       code,
		"message":      message,
		"ok":           false,
		"versionError": versionError,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"url":          c.OriginalURL(),
		"type":         errorType,
	})
}

package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// VersionErrorResponse sends a version conflict error (409)
func VersionErrorResponse(c *fiber.Ctx) error {
	return c.Status(fiber.StatusConflict).JSON(fiber.Map{
		"status":       fiber.StatusConflict,
		"message":      "E_VERSION - Refresh and reconcile with current version and retry.",
		"ok":           false,
		"versionError": true,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
		"url":          c.OriginalURL(),
		"type":         "version",
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      "not_found",
	})
}

// MutationSuccessResponse sends a success response for document mutations
func MutationSuccessResponse(c *fiber.Ctx, status int, document map[string]interface{}) error {
	return c.Status(status).JSON(fiber.Map{
		"message":   "Success",
		"ok":        true,
		"document":  document,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ListResponse sends one page of documents
func ListResponse(c *fiber.Ctx, total int64, documents []map[string]interface{}) error {
	if documents == nil {
		documents = []map[string]interface{}{}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"total":     total,
		"documents": documents,
	})
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status       int    `json:"status"`
	Message      string `json:"message"`
	Ok           bool   `json:"ok"`
	Timestamp    string `json:"timestamp"`
	URL          string `json:"url"`
	Type         string `json:"type,omitempty"`
	VersionError bool   `json:"versionError,omitempty"`
}

// MutationResponseStruct defines the schema for mutation success responses
type MutationResponseStruct struct {
	Message   string                 `json:"message"`
	Ok        bool                   `json:"ok"`
	Document  map[string]interface{} `json:"document"`
	Timestamp string                 `json:"timestamp"`
}

// ListResponseStruct defines the schema for document list responses
type ListResponseStruct struct {
	Total     int64                    `json:"total"`
	Documents []map[string]interface{} `json:"documents"`
}

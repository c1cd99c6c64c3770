// documents.go
//
// An offline-first learning content service and client for the jam-build stack
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of jam-build-learnhub.
// jam-build-learnhub is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// jam-build-learnhub is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with jam-build-learnhub.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-learnhub/internal/content"
	"github.com/localnerve/jam-build-learnhub/internal/middleware"
	"github.com/localnerve/jam-build-learnhub/internal/services"
	"github.com/localnerve/jam-build-learnhub/internal/types"
	"github.com/localnerve/jam-build-learnhub/internal/utils"
	"gorm.io/gorm"
)

// selfEditable lists the profile attributes a non-admin may change on their own profile
var selfEditable = map[string]bool{
	"name":  true,
	"phone": true,
	"bio":   true,
}

// DocumentHandler handles document database routes
type DocumentHandler struct {
	DB         *gorm.DB
	DatabaseID string
}

func (h *DocumentHandler) checkDatabase(c *fiber.Ctx) error {
	if c.Params("database") != h.DatabaseID {
		return types.NewError(fiber.StatusNotFound, "not_found", "Database %q not found", c.Params("database"))
	}
	return nil
}

func isAdmin(c *fiber.Ctx) bool {
	return middleware.Role(c) == content.RoleAdmin
}

// canRead reports whether the caller may read documents of collection owned by ownerID.
// Profiles are private to their owner and admins; everything else is public.
func canRead(c *fiber.Ctx, collection, ownerID string) bool {
	if collection != content.Users {
		return true
	}
	userID := middleware.UserID(c)
	return userID != "" && (isAdmin(c) || userID == ownerID)
}

// ListDocuments handles GET /api/databases/:database/collections/:collection/documents
// @Summary List documents
// @Description Cursor paginated list of a collection, ordered by document id
// @Tags Documents
// @Produce json
// @Param database path string true "Database ID"
// @Param collection path string true "Collection ID"
// @Param limit query int false "Page size (default 25, max 100)"
// @Param cursorAfter query string false "Return documents after this id"
// @Param filter query []string false "Equality filter attribute:value" collectionFormat(multi)
// @Param search query string false "Case-insensitive substring of any attribute value"
// @Success 200 {object} utils.ListResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /databases/{database}/collections/{collection}/documents [get]
func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	if err := h.checkDatabase(c); err != nil {
		return err
	}
	collection := c.Params("collection")

	limit, err := parseLimit(c)
	if err != nil {
		return invalidInput(c, err.Error())
	}
	filters, err := parseFilters(c)
	if err != nil {
		return invalidInput(c, err.Error())
	}

	query := services.ListQuery{
		Collection:  collection,
		Limit:       limit,
		CursorAfter: c.Query("cursorAfter"),
		Filters:     filters,
		Search:      c.Query("search"),
	}

	if collection == content.Users {
		userID := middleware.UserID(c)
		if userID == "" {
			return utils.ErrorResponse(c, "Authentication required", fiber.StatusUnauthorized, "data.authorization.user")
		}
		if !isAdmin(c) {
			query.OwnerID = userID
		}
	}

	documents, total, err := services.ListDocuments(h.DB, query)
	if err != nil {
		return serviceError(c, err, "listDocuments")
	}

	results := make([]map[string]interface{}, len(documents))
	for i, doc := range documents {
		results[i] = doc
	}
	return utils.ListResponse(c, total, results)
}

// GetDocument handles GET /api/databases/:database/collections/:collection/documents/:id
// @Summary Get document
// @Tags Documents
// @Produce json
// @Param database path string true "Database ID"
// @Param collection path string true "Collection ID"
// @Param id path string true "Document ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /databases/{database}/collections/{collection}/documents/{id} [get]
func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	if err := h.checkDatabase(c); err != nil {
		return err
	}
	collection := c.Params("collection")
	id := c.Params("id")

	doc, err := services.FindDocument(h.DB, collection, id)
	if err != nil {
		return serviceError(c, err, "getDocument")
	}
	if !canRead(c, collection, doc.OwnerID) {
		// Do not reveal the existence of other users' profiles
		return utils.NotFoundResponse(c, "Resource not found")
	}

	return c.Status(fiber.StatusOK).JSON(services.ReduceDocument(*doc))
}

// CreateDocument handles POST /api/databases/:database/collections/:collection/documents
// @Summary Create document
// @Tags Documents
// @Accept json
// @Produce json
// @Param database path string true "Database ID"
// @Param collection path string true "Collection ID"
// @Param body body object true "{documentId?, data}"
// @Success 201 {object} utils.MutationResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /databases/{database}/collections/{collection}/documents [post]
func (h *DocumentHandler) CreateDocument(c *fiber.Ctx) error {
	if err := h.checkDatabase(c); err != nil {
		return err
	}
	collection := c.Params("collection")

	var body struct {
		DocumentID string                 `json:"documentId"`
		Data       map[string]interface{} `json:"data"`
	}
	if err := c.BodyParser(&body); err != nil {
		return invalidInput(c, "Invalid input")
	}

	userID := middleware.UserID(c)
	if collection == content.Users {
		// Profiles are created by account sign-up; a user may only recreate their own
		if userID == "" || (!isAdmin(c) && body.DocumentID != userID) {
			return types.NewError(fiber.StatusForbidden, "data.authorization.user", "Cannot create another user's profile")
		}
	} else if !isAdmin(c) {
		return types.NewError(fiber.StatusForbidden, "data.authorization.admin", "Admin role required")
	}

	if !isAdmin(c) && collection == content.Users {
		if body.Data == nil {
			body.Data = map[string]interface{}{}
		}
		body.Data["role"] = content.RoleStudent
		body.Data["active"] = true
	}

	ownerID := userID
	if collection == content.Users && body.DocumentID != "" {
		ownerID = body.DocumentID
	}

	result, err := services.CreateDocument(h.DB, services.CreateInput{
		Collection: collection,
		DocumentID: body.DocumentID,
		OwnerID:    ownerID,
		Data:       body.Data,
	})
	if err != nil {
		return serviceError(c, err, "createDocument")
	}
	if collection == content.Topics {
		subject, _ := result["subject"].(string)
		h.refreshTopicCounts(subject)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusCreated, result)
}

// UpdateDocument handles PATCH /api/databases/:database/collections/:collection/documents/:id
// @Summary Update document
// @Description Partial update; null removes an attribute. Requires the current version.
// @Tags Documents
// @Accept json
// @Produce json
// @Param database path string true "Database ID"
// @Param collection path string true "Collection ID"
// @Param id path string true "Document ID"
// @Param body body object true "{version, data}"
// @Success 200 {object} utils.MutationResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /databases/{database}/collections/{collection}/documents/{id} [patch]
func (h *DocumentHandler) UpdateDocument(c *fiber.Ctx) error {
	if err := h.checkDatabase(c); err != nil {
		return err
	}
	collection := c.Params("collection")
	id := c.Params("id")

	var body struct {
		Version types.FlexUint64       `json:"version"`
		Data    map[string]interface{} `json:"data"`
	}
	if err := c.BodyParser(&body); err != nil {
		return invalidInput(c, "Invalid input")
	}

	if !isAdmin(c) {
		if collection != content.Users || middleware.UserID(c) != id {
			return types.NewError(fiber.StatusForbidden, "data.authorization.admin", "Admin role required")
		}
		for name := range body.Data {
			if !selfEditable[name] {
				return types.NewError(fiber.StatusForbidden, "data.authorization.user", "Attribute %q cannot be changed", name)
			}
		}
	}

	var previousSubject string
	if collection == content.Topics {
		previousSubject = h.topicSubject(id)
	}

	result, err := services.UpdateDocument(h.DB, collection, id, body.Version.Uint64(), body.Data)
	if err != nil {
		return serviceError(c, err, "updateDocument")
	}
	if collection == content.Topics {
		subject, _ := result["subject"].(string)
		h.refreshTopicCounts(previousSubject, subject)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, result)
}

// DeleteDocument handles DELETE /api/databases/:database/collections/:collection/documents/:id
// @Summary Delete document
// @Tags Documents
// @Accept json
// @Produce json
// @Param database path string true "Database ID"
// @Param collection path string true "Collection ID"
// @Param id path string true "Document ID"
// @Param version query string false "Current version (or in body)"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /databases/{database}/collections/{collection}/documents/{id} [delete]
func (h *DocumentHandler) DeleteDocument(c *fiber.Ctx) error {
	if err := h.checkDatabase(c); err != nil {
		return err
	}

	var body struct {
		Version types.FlexUint64 `json:"version"`
	}
	if raw := c.Query("version"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return invalidInput(c, "version must be an unsigned integer")
		}
		body.Version = types.FlexUint64(v)
	} else if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return invalidInput(c, "Invalid input")
		}
	}

	collection, id := c.Params("collection"), c.Params("id")
	var previousSubject string
	if collection == content.Topics {
		previousSubject = h.topicSubject(id)
	}

	if err := services.DeleteDocument(h.DB, collection, id, body.Version.Uint64()); err != nil {
		return serviceError(c, err, "deleteDocument")
	}
	h.refreshTopicCounts(previousSubject)
	return c.SendStatus(fiber.StatusNoContent)
}

// topicSubject returns the subject a stored topic references, or ""
func (h *DocumentHandler) topicSubject(id string) string {
	doc, err := services.FindDocument(h.DB, content.Topics, id)
	if err != nil {
		return ""
	}
	subject, _ := services.ReduceDocument(*doc)["subject"].(string)
	return subject
}

// refreshTopicCounts keeps subjects' topic_count in step with topic writes.
// The topic write has already succeeded, so failures are only logged.
func (h *DocumentHandler) refreshTopicCounts(subjectIDs ...string) {
	if err := services.RefreshTopicCounts(h.DB, subjectIDs...); err != nil {
		log.Printf("Failed to refresh topic counts: %v", err)
	}
}

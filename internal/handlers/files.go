package handlers

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-learnhub/internal/middleware"
	"github.com/localnerve/jam-build-learnhub/internal/models"
	"github.com/localnerve/jam-build-learnhub/internal/services"
	"github.com/localnerve/jam-build-learnhub/internal/types"
	"github.com/localnerve/jam-build-learnhub/internal/utils"
	"gorm.io/gorm"
)

// FileHandler handles blob storage routes
type FileHandler struct {
	DB     *gorm.DB
	Store  *services.FileStore
	Tokens *services.TokenIssuer
}

func fileResult(f *models.StoredFile) fiber.Map {
	return fiber.Map{
		"$id":        f.FileID,
		"bucketId":   f.BucketID,
		"name":       f.FileName,
		"mimeType":   f.MimeType,
		"sizeBytes":  f.SizeBytes,
		"checksum":   f.Checksum,
		"$createdAt": f.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// CreateFile handles POST /api/storage/buckets/:bucket/files
// @Summary Upload a file
// @Tags Storage
// @Accept multipart/form-data
// @Produce json
// @Param bucket path string true "Bucket ID"
// @Param file formData file true "File to upload"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 413 {object} utils.ErrorResponseStruct
// @Router /storage/buckets/{bucket}/files [post]
func (h *FileHandler) CreateFile(c *fiber.Ctx) error {
	header, err := c.FormFile("file")
	if err != nil {
		return invalidInput(c, "Multipart field 'file' is required")
	}

	src, err := header.Open()
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "createFile")
	}
	defer src.Close()

	mimeType := header.Header.Get(fiber.HeaderContentType)
	if mimeType == "" {
		mimeType = fiber.MIMEOctetStream
	}

	file, err := h.Store.Create(c.Params("bucket"), middleware.UserID(c), header.Filename, mimeType, src)
	if err != nil {
		return serviceError(c, err, "createFile")
	}
	return c.Status(fiber.StatusCreated).JSON(fileResult(file))
}

// GetFile handles GET /api/storage/buckets/:bucket/files/:id
// @Summary Get file metadata
// @Tags Storage
// @Produce json
// @Param bucket path string true "Bucket ID"
// @Param id path string true "File ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /storage/buckets/{bucket}/files/{id} [get]
func (h *FileHandler) GetFile(c *fiber.Ctx) error {
	file, err := h.Store.Get(c.Params("bucket"), c.Params("id"))
	if err != nil {
		return serviceError(c, err, "getFile")
	}
	return c.Status(fiber.StatusOK).JSON(fileResult(file))
}

// ViewFile handles GET /api/storage/buckets/:bucket/files/:id/view
// @Summary View a file inline
// @Description Requires a session or a file view token in the "token" query parameter
// @Tags Storage
// @Param bucket path string true "Bucket ID"
// @Param id path string true "File ID"
// @Param token query string false "File view token"
// @Success 200
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /storage/buckets/{bucket}/files/{id}/view [get]
func (h *FileHandler) ViewFile(c *fiber.Ctx) error {
	bucket, id := c.Params("bucket"), c.Params("id")
	if err := h.authorizeRead(c, bucket, id); err != nil {
		return err
	}

	file, err := h.Store.Get(bucket, id)
	if err != nil {
		return serviceError(c, err, "viewFile")
	}

	c.Set(fiber.HeaderContentType, file.MimeType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", file.FileName))
	return c.SendFile(h.Store.Path(file))
}

// DownloadFile handles GET /api/storage/buckets/:bucket/files/:id/download
// @Summary Download a file
// @Tags Storage
// @Description Requires a session or a view token. Counts a download on notes referencing the file.
// @Param bucket path string true "Bucket ID"
// @Param id path string true "File ID"
// @Param token query string false "File view token"
// @Success 200
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /storage/buckets/{bucket}/files/{id}/download [get]
func (h *FileHandler) DownloadFile(c *fiber.Ctx) error {
	bucket, id := c.Params("bucket"), c.Params("id")
	if err := h.authorizeRead(c, bucket, id); err != nil {
		return err
	}

	file, err := h.Store.Get(bucket, id)
	if err != nil {
		return serviceError(c, err, "downloadFile")
	}
	if err := services.RecordDownload(h.DB, file.FileID); err != nil {
		log.Printf("Failed to record download of %s: %v", file.FileID, err)
	}
	c.Set(fiber.HeaderContentType, file.MimeType)
	return c.Download(h.Store.Path(file), file.FileName)
}

// CreateFileToken handles POST /api/storage/buckets/:bucket/files/:id/token
// @Summary Issue a file view token
// @Description Short-lived token for embedding the file in a third-party viewer
// @Tags Storage
// @Produce json
// @Param bucket path string true "Bucket ID"
// @Param id path string true "File ID"
// @Success 201 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /storage/buckets/{bucket}/files/{id}/token [post]
func (h *FileHandler) CreateFileToken(c *fiber.Ctx) error {
	file, err := h.Store.Get(c.Params("bucket"), c.Params("id"))
	if err != nil {
		return serviceError(c, err, "createFileToken")
	}

	token, expires, err := h.Tokens.IssueFileView(file.BucketID, file.FileID)
	if err != nil {
		return serviceError(c, err, "createFileToken")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token":     token,
		"expiresAt": expires.UTC().Format(time.RFC3339),
	})
}

// DeleteFile handles DELETE /api/storage/buckets/:bucket/files/:id
// @Summary Delete a file
// @Tags Storage
// @Param bucket path string true "Bucket ID"
// @Param id path string true "File ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /storage/buckets/{bucket}/files/{id} [delete]
func (h *FileHandler) DeleteFile(c *fiber.Ctx) error {
	if err := h.Store.Delete(c.Params("bucket"), c.Params("id")); err != nil {
		return serviceError(c, err, "deleteFile")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// authorizeRead admits a signed view token for this file or any session.
// The returned error is rendered by the app's ErrorHandler.
func (h *FileHandler) authorizeRead(c *fiber.Ctx, bucket, id string) error {
	if token := c.Query("token"); token != "" {
		if err := h.Tokens.VerifyFileView(token, bucket, id); err != nil {
			return types.NewError(fiber.StatusForbidden, "storage.authorization.token", "%v", err)
		}
		return nil
	}
	if middleware.UserID(c) == "" {
		return types.NewError(fiber.StatusUnauthorized, "storage.authorization.token", "Authentication required")
	}
	return nil
}

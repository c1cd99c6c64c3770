package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
	"github.com/localnerve/jam-build-learnhub/internal/models"
	"gorm.io/gorm"
)

var (
	// ErrFileTooLarge is returned when an upload exceeds the configured limit
	ErrFileTooLarge = errors.New("file too large")
	// ErrInvalidBucket is returned for bucket names that are not safe path segments
	ErrInvalidBucket = errors.New("invalid bucket")
)

var bucketPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// FileStore keeps blob metadata in the database and blob bytes on disk
type FileStore struct {
	DB       *gorm.DB
	Root     string
	MaxBytes int64
}

// NewFileStore creates the storage root if needed
func NewFileStore(db *gorm.DB, root string, maxBytes int64) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", root, err)
	}
	return &FileStore{DB: db, Root: root, MaxBytes: maxBytes}, nil
}

// Path returns the on-disk location of a stored file
func (s *FileStore) Path(f *models.StoredFile) string {
	return filepath.Join(s.Root, f.BucketID, f.FileID)
}

// Create streams r to disk and records its metadata
func (s *FileStore) Create(bucket, ownerID, fileName, mimeType string, r io.Reader) (*models.StoredFile, error) {
	if !bucketPattern.MatchString(bucket) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBucket, bucket)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate file id: %w", err)
	}

	dir := filepath.Join(s.Root, bucket)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create bucket dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	hash := sha256.New()
	limit := s.MaxBytes
	if limit <= 0 {
		limit = 50 << 20
	}
	size, err := io.Copy(io.MultiWriter(tmp, hash), io.LimitReader(r, limit+1))
	closeErr := tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to write upload: %w", err)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to write upload: %w", closeErr)
	}
	if size > limit {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, limit)
	}

	file := &models.StoredFile{
		FileID:    id.String(),
		BucketID:  bucket,
		FileName:  filepath.Base(fileName),
		MimeType:  mimeType,
		SizeBytes: size,
		Checksum:  hex.EncodeToString(hash.Sum(nil)),
		OwnerID:   ownerID,
	}

	if err := os.Rename(tmp.Name(), s.Path(file)); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	if err := s.DB.Create(file).Error; err != nil {
		if rmErr := os.Remove(s.Path(file)); rmErr != nil {
			log.Printf("Failed to remove orphaned file %s: %v", s.Path(file), rmErr)
		}
		return nil, err
	}

	return file, nil
}

// Get returns file metadata
func (s *FileStore) Get(bucket, fileID string) (*models.StoredFile, error) {
	var file models.StoredFile
	err := silent(s.DB).Where("bucket_id = ? AND file_id = ?", bucket, fileID).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &file, nil
}

// Delete removes the metadata row and the blob
func (s *FileStore) Delete(bucket, fileID string) error {
	file, err := s.Get(bucket, fileID)
	if err != nil {
		return err
	}
	if err := s.DB.Delete(file).Error; err != nil {
		return err
	}
	if err := os.Remove(s.Path(file)); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to remove blob %s: %v", s.Path(file), err)
	}
	return nil
}

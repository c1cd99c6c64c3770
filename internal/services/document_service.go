// document_service.go
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

package services

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/jam-build-learnhub/internal/content"
	"github.com/localnerve/jam-build-learnhub/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/hints"
)

const (
	// DefaultPageSize is used when a list request gives no limit
	DefaultPageSize = 25
	// MaxPageSize caps a single list page
	MaxPageSize = 100
)

var (
	// ErrNotFound is returned when a document does not exist in the collection
	ErrNotFound = errors.New("not found")
	// ErrVersion is returned when the caller's version does not match the stored one
	ErrVersion = errors.New("E_VERSION")
	// ErrExists is returned when creating a document with an id already in use
	ErrExists = errors.New("document already exists")
)

var documentIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,35}$`)

// DocumentResult is the API output for one document:
// { "$id": "...", "$collection": "...", "$version": "1", "$createdAt": ..., "$updatedAt": ..., attr: value }
type DocumentResult map[string]interface{}

// Filter is an equality condition on a top-level attribute
type Filter struct {
	Attribute string
	Value     string
}

// ParseFilter parses "attribute:value"
func ParseFilter(s string) (Filter, error) {
	name, value, ok := strings.Cut(s, ":")
	if !ok || name == "" {
		return Filter{}, fmt.Errorf("%w: filter %q must be attribute:value", content.ErrInvalid, s)
	}
	return Filter{Attribute: name, Value: value}, nil
}

// ListQuery selects one page of a collection
type ListQuery struct {
	Collection  string
	Limit       int
	CursorAfter string
	Filters     []Filter
	// Search is a case-insensitive substring matched against any filterable attribute
	Search  string
	OwnerID string
}

// CreateInput describes a new document
type CreateInput struct {
	Collection string
	DocumentID string
	OwnerID    string
	Data       map[string]interface{}
}

func silent(db *gorm.DB) *gorm.DB {
	return db.Session(&gorm.Session{Logger: db.Logger.LogMode(logger.Silent)})
}

// ListDocuments returns one page of documents ordered by id, starting after
// q.CursorAfter, plus the total number of documents matching the filters.
func ListDocuments(db *gorm.DB, q ListQuery) ([]DocumentResult, int64, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	root := db.Session(&gorm.Session{NewDB: true})
	base := silent(db).Model(&models.Document{}).Where("collection_name = ?", q.Collection)
	for _, f := range q.Filters {
		base = base.Where("document_id IN (?)",
			root.Model(&models.DocumentAttribute{}).
				Select("document_id").
				Where("attribute_name = ? AND match_key = ?", f.Attribute, f.Value))
	}
	if term := searchPattern(q.Search); term != "" {
		base = base.Where("document_id IN (?)",
			root.Model(&models.DocumentAttribute{}).
				Select("document_id").
				Where("LOWER(match_key) LIKE ?", term))
	}
	if q.OwnerID != "" {
		base = base.Where("owner_id = ?", q.OwnerID)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := base
	if q.CursorAfter != "" {
		page = page.Where("document_id > ?", q.CursorAfter)
	}
	if db.Dialector.Name() == "mysql" {
		page = page.Clauses(hints.UseIndex("idx_collection_document"))
	}

	var docs []models.Document
	if err := page.Preload("Attributes").
		Order("document_id ASC").
		Limit(limit).
		Find(&docs).Error; err != nil {
		return nil, 0, err
	}

	results := make([]DocumentResult, 0, len(docs))
	for _, doc := range docs {
		results = append(results, ReduceDocument(doc))
	}
	return results, total, nil
}

// LIKE wildcards are dropped from search terms; escape syntax is not portable
// across the supported databases.
var likeWildcards = strings.NewReplacer("%", "", "_", "")

func searchPattern(search string) string {
	term := strings.ToLower(strings.TrimSpace(likeWildcards.Replace(search)))
	if term == "" {
		return ""
	}
	return "%" + term + "%"
}

// FindDocument loads a document model with its attributes
func FindDocument(db *gorm.DB, collection, documentID string) (*models.Document, error) {
	var doc models.Document
	err := silent(db).
		Preload("Attributes").
		Where("collection_name = ? AND document_id = ?", collection, documentID).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// GetDocument retrieves a single document
func GetDocument(db *gorm.DB, collection, documentID string) (DocumentResult, error) {
	doc, err := FindDocument(db, collection, documentID)
	if err != nil {
		return nil, err
	}
	return ReduceDocument(*doc), nil
}

// CreateDocument inserts a new document at version 1
func CreateDocument(db *gorm.DB, in CreateInput) (DocumentResult, error) {
	if err := content.ValidateAttributes(in.Collection, in.Data, false); err != nil {
		return nil, err
	}

	documentID := in.DocumentID
	if documentID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("failed to generate document id: %w", err)
		}
		documentID = id.String()
	} else if !documentIDPattern.MatchString(documentID) {
		return nil, fmt.Errorf("%w: document id %q", content.ErrInvalid, documentID)
	}

	attributes, err := buildAttributes(documentID, in.Data)
	if err != nil {
		return nil, err
	}

	doc := models.Document{
		DocumentID:      documentID,
		CollectionName:  in.Collection,
		OwnerID:         in.OwnerID,
		DocumentVersion: 1,
		Attributes:      attributes,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Document{}).Where("document_id = ?", documentID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrExists
		}
		return tx.Create(&doc).Error
	})
	if err != nil {
		return nil, err
	}

	return ReduceDocument(doc), nil
}

// UpdateDocument applies a partial update. A null attribute value removes the
// attribute. The document version must match the stored version; it is bumped
// only when something actually changed.
func UpdateDocument(db *gorm.DB, collection, documentID string, version uint64, data map[string]interface{}) (DocumentResult, error) {
	if err := content.ValidateAttributes(collection, data, true); err != nil {
		return nil, err
	}

	var result DocumentResult
	err := db.Transaction(func(tx *gorm.DB) error {
		doc, err := lockDocument(tx, collection, documentID)
		if err != nil {
			return err
		}
		if doc.DocumentVersion != version {
			return ErrVersion
		}

		if err := patchDocument(tx, doc, data); err != nil {
			return err
		}

		reloaded, err := FindDocument(tx, collection, documentID)
		if err != nil {
			return err
		}
		result = ReduceDocument(*reloaded)
		return nil
	})

	return result, err
}

// DeleteDocument removes a document and its attributes after a version check
func DeleteDocument(db *gorm.DB, collection, documentID string, version uint64) error {
	return db.Transaction(func(tx *gorm.DB) error {
		doc, err := lockDocument(tx, collection, documentID)
		if err != nil {
			return err
		}
		if doc.DocumentVersion != version {
			return ErrVersion
		}

		if err := tx.Where("document_id = ?", documentID).Delete(&models.DocumentAttribute{}).Error; err != nil {
			return err
		}
		result := tx.Where("document_id = ? AND document_version = ?", documentID, version).Delete(&models.Document{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w - Failed to delete document due to concurrent modification", ErrVersion)
		}
		return nil
	})
}

// PatchDocumentUnversioned applies an update without a caller-supplied version.
// Used for administrative changes where the caller does not hold the document.
func PatchDocumentUnversioned(db *gorm.DB, collection, documentID string, data map[string]interface{}) (DocumentResult, error) {
	if err := content.ValidateAttributes(collection, data, true); err != nil {
		return nil, err
	}

	var result DocumentResult
	err := db.Transaction(func(tx *gorm.DB) error {
		doc, err := lockDocument(tx, collection, documentID)
		if err != nil {
			return err
		}
		if err := patchDocument(tx, doc, data); err != nil {
			return err
		}
		reloaded, err := FindDocument(tx, collection, documentID)
		if err != nil {
			return err
		}
		result = ReduceDocument(*reloaded)
		return nil
	})
	return result, err
}

// CountDocuments counts the documents in a collection
func CountDocuments(db *gorm.DB, collection string) (int64, error) {
	var count int64
	err := silent(db).Model(&models.Document{}).Where("collection_name = ?", collection).Count(&count).Error
	return count, err
}

func lockDocument(tx *gorm.DB, collection, documentID string) (*models.Document, error) {
	var doc models.Document
	err := silent(tx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("collection_name = ? AND document_id = ?", collection, documentID).
		First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// patchDocument upserts or removes attributes and bumps the version on change
func patchDocument(tx *gorm.DB, doc *models.Document, data map[string]interface{}) error {
	documentUpdated := false

	for name, value := range data {
		var existing models.DocumentAttribute
		err := silent(tx).
			Where("document_id = ? AND attribute_name = ?", doc.DocumentID, name).
			First(&existing).Error
		found := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if value == nil {
			if found {
				if err := tx.Delete(&existing).Error; err != nil {
					return err
				}
				documentUpdated = true
			}
			continue
		}

		jsonValue, err := models.NewJSONValue(value)
		if err != nil {
			return fmt.Errorf("%w: attribute %q: %v", content.ErrInvalid, name, err)
		}

		if !found {
			attr := models.DocumentAttribute{
				DocumentID:     doc.DocumentID,
				AttributeName:  name,
				AttributeValue: jsonValue,
				MatchKey:       jsonValue.MatchKey(),
			}
			if err := tx.Create(&attr).Error; err != nil {
				return err
			}
			documentUpdated = true
			continue
		}

		if string(existing.AttributeValue.JSON) != string(jsonValue.JSON) {
			if err := tx.Model(&existing).Updates(map[string]interface{}{
				"attribute_value": jsonValue,
				"match_key":       jsonValue.MatchKey(),
			}).Error; err != nil {
				return err
			}
			documentUpdated = true
		}
	}

	if !documentUpdated {
		return nil
	}

	result := tx.Model(&models.Document{}).
		Where("document_id = ? AND document_version = ?", doc.DocumentID, doc.DocumentVersion).
		Updates(map[string]interface{}{
			"document_version": doc.DocumentVersion + 1,
			"updated_at":       time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w - Failed to update document due to concurrent modification", ErrVersion)
	}
	return nil
}

func buildAttributes(documentID string, data map[string]interface{}) ([]models.DocumentAttribute, error) {
	attributes := make([]models.DocumentAttribute, 0, len(data))
	for name, value := range data {
		if value == nil {
			continue
		}
		jsonValue, err := models.NewJSONValue(value)
		if err != nil {
			return nil, fmt.Errorf("%w: attribute %q: %v", content.ErrInvalid, name, err)
		}
		attributes = append(attributes, models.DocumentAttribute{
			DocumentID:     documentID,
			AttributeName:  name,
			AttributeValue: jsonValue,
			MatchKey:       jsonValue.MatchKey(),
		})
	}
	return attributes, nil
}

// ReduceDocument converts a loaded document model to API output
func ReduceDocument(doc models.Document) DocumentResult {
	output := make(DocumentResult, len(doc.Attributes)+5)
	output["$id"] = doc.DocumentID
	output["$collection"] = doc.CollectionName
	output["$version"] = strconv.FormatUint(doc.DocumentVersion, 10)
	output["$createdAt"] = doc.CreatedAt.UTC().Format(time.RFC3339Nano)
	output["$updatedAt"] = doc.UpdatedAt.UTC().Format(time.RFC3339Nano)

	for _, attr := range doc.Attributes {
		value, err := attr.AttributeValue.Decode()
		if err != nil {
			continue
		}
		output[attr.AttributeName] = value
	}
	return output
}

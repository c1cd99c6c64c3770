package services

import (
	"errors"

	"github.com/localnerve/jam-build-learnhub/internal/content"
	"gorm.io/gorm"
)

// RefreshTopicCounts sets topic_count on each subject to the number of topics
// referencing it. Missing subjects are skipped.
func RefreshTopicCounts(db *gorm.DB, subjectIDs ...string) error {
	for _, subjectID := range subjectIDs {
		if subjectID == "" {
			continue
		}
		_, total, err := ListDocuments(db, ListQuery{
			Collection: content.Topics,
			Limit:      1,
			Filters:    []Filter{{Attribute: "subject", Value: subjectID}},
		})
		if err != nil {
			return err
		}
		_, err = PatchDocumentUnversioned(db, content.Subjects, subjectID, map[string]interface{}{"topic_count": total})
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return nil
}

// RecordDownload increments downloads on every note that references fileID
func RecordDownload(db *gorm.DB, fileID string) error {
	var noteIDs []string
	err := silent(db).Table("documents").
		Select("documents.document_id").
		Joins("JOIN document_attributes ON document_attributes.document_id = documents.document_id").
		Where("documents.collection_name = ? AND document_attributes.attribute_name = ? AND document_attributes.match_key = ?",
			content.Notes, "file_id", fileID).
		Scan(&noteIDs).Error
	if err != nil {
		return err
	}

	for _, noteID := range noteIDs {
		if err := incrementAttribute(db, content.Notes, noteID, "downloads"); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return nil
}

// incrementAttribute adds one to a numeric attribute under the document lock.
// An absent or non-numeric value counts as zero.
func incrementAttribute(db *gorm.DB, collection, documentID, name string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		doc, err := lockDocument(tx, collection, documentID)
		if err != nil {
			return err
		}
		current, err := FindDocument(tx, collection, documentID)
		if err != nil {
			return err
		}

		var n int64
		for _, attr := range current.Attributes {
			if attr.AttributeName != name {
				continue
			}
			if v, err := attr.AttributeValue.Decode(); err == nil {
				if f, ok := v.(float64); ok {
					n = int64(f)
				}
			}
		}
		return patchDocument(tx, doc, map[string]interface{}{name: n + 1})
	})
}

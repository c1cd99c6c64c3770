package models

import (
	"time"
)

// Document is one record in a named collection of the document store.
// DocumentID is a UUIDv7 string, so ordering by it follows creation order
// and it doubles as the pagination cursor.
type Document struct {
	DocumentID      string `gorm:"primaryKey;size:36;index:idx_collection_document,priority:2"`
	CollectionName  string `gorm:"size:255;not null;index:idx_collection_document,priority:1"`
	OwnerID         string `gorm:"size:36;index"`
	DocumentVersion uint64 `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Attributes      []DocumentAttribute `gorm:"foreignKey:DocumentID;references:DocumentID;constraint:OnDelete:CASCADE"`
}

// DocumentAttribute holds a single top-level attribute of a document
type DocumentAttribute struct {
	AttributeID    uint64    `gorm:"primaryKey;autoIncrement"`
	DocumentID     string    `gorm:"size:36;not null;index:idx_document_attribute,unique"`
	AttributeName  string    `gorm:"size:255;not null;index:idx_document_attribute,unique;index:idx_attribute_match,priority:1"`
	AttributeValue JSONValue `gorm:"not null"`
	MatchKey       string    `gorm:"size:255;index:idx_attribute_match,priority:2"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName overrides the table name for Document
func (Document) TableName() string {
	return "documents"
}

// TableName overrides the table name for DocumentAttribute
func (DocumentAttribute) TableName() string {
	return "document_attributes"
}

package services

import (
	"encoding/json"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// SeedCollection inserts the documents in raw (a JSON array of objects) when
// the collection is empty. Returns the number of documents created.
func SeedCollection(db *gorm.DB, collection string, raw []byte) (int, error) {
	count, err := CountDocuments(db, collection)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	var items []map[string]interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return 0, fmt.Errorf("invalid seed data for %s: %w", collection, err)
	}

	created := 0
	for _, item := range items {
		documentID, _ := item["$id"].(string)
		delete(item, "$id")
		if _, err := CreateDocument(db, CreateInput{
			Collection: collection,
			DocumentID: documentID,
			Data:       item,
		}); err != nil {
			return created, fmt.Errorf("failed to seed %s: %w", collection, err)
		}
		created++
	}

	log.Printf("Seeded %d documents into %s", created, collection)
	return created, nil
}

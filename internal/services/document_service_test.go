// document_service_test.go
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
	"testing"

	"github.com/localnerve/jam-build-learnhub/internal/content"
)

func TestCreateAndGetDocument(t *testing.T) {
	db := setupTestDB(t)

	created, err := CreateDocument(db, CreateInput{
		Collection: content.Subjects,
		Data:       map[string]interface{}{"name": "Math", "grade": "form-2", "topic_count": 3},
	})
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	id, _ := created["$id"].(string)
	if id == "" {
		t.Fatal("Expected a generated $id")
	}
	if created["$version"] != "1" {
		t.Errorf("Expected $version \"1\", got %v", created["$version"])
	}

	got, err := GetDocument(db, content.Subjects, id)
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if got["name"] != "Math" {
		t.Errorf("Expected name Math, got %v", got["name"])
	}
	if got["topic_count"] != float64(3) {
		t.Errorf("Expected topic_count 3, got %v", got["topic_count"])
	}
	if got["$collection"] != content.Subjects {
		t.Errorf("Expected $collection subjects, got %v", got["$collection"])
	}
}

func TestCreateDocumentValidation(t *testing.T) {
	db := setupTestDB(t)

	tests := []struct {
		name string
		in   CreateInput
	}{
		{"missing required", CreateInput{Collection: content.Subjects, Data: map[string]interface{}{"name": "Math"}}},
		{"reserved attribute", CreateInput{Collection: "misc", Data: map[string]interface{}{"$id": "x"}}},
		{"bad tip status", CreateInput{Collection: content.Tips, Data: map[string]interface{}{"title": "t", "content": "c", "status": "live"}}},
		{"bad document id", CreateInput{Collection: "misc", DocumentID: "../etc", Data: map[string]interface{}{"a": 1}}},
		{"empty data", CreateInput{Collection: "misc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateDocument(db, tt.in)
			if !errors.Is(err, content.ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestCreateDocumentDuplicateID(t *testing.T) {
	db := setupTestDB(t)

	in := CreateInput{Collection: content.Subjects, DocumentID: "s1", Data: map[string]interface{}{"name": "Math", "grade": "form-2"}}
	if _, err := CreateDocument(db, in); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if _, err := CreateDocument(db, in); !errors.Is(err, ErrExists) {
		t.Errorf("Expected ErrExists, got %v", err)
	}
}

func TestListDocumentsPaginationAndFilters(t *testing.T) {
	db := setupTestDB(t)

	for i := 0; i < 7; i++ {
		grade := "form-1"
		if i%2 == 0 {
			grade = "form-2"
		}
		_, err := CreateDocument(db, CreateInput{
			Collection: content.Subjects,
			DocumentID: fmt.Sprintf("s%d", i),
			Data:       map[string]interface{}{"name": fmt.Sprintf("Subject %d", i), "grade": grade},
		})
		if err != nil {
			t.Fatalf("CreateDocument failed: %v", err)
		}
	}
	// Another collection must not leak into the listing
	if _, err := CreateDocument(db, CreateInput{Collection: content.Topics, DocumentID: "t1", Data: map[string]interface{}{"title": "Algebra", "subject": "s0"}}); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	page, total, err := ListDocuments(db, ListQuery{Collection: content.Subjects, Limit: 3})
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if total != 7 || len(page) != 3 {
		t.Fatalf("Expected 3 of 7, got %d of %d", len(page), total)
	}
	if page[0]["$id"] != "s0" || page[2]["$id"] != "s2" {
		t.Errorf("Expected ascending ids, got %v..%v", page[0]["$id"], page[2]["$id"])
	}

	next, _, err := ListDocuments(db, ListQuery{Collection: content.Subjects, Limit: 3, CursorAfter: "s2"})
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(next) != 3 || next[0]["$id"] != "s3" {
		t.Errorf("Expected page starting after s2, got %v", next)
	}

	filtered, total, err := ListDocuments(db, ListQuery{
		Collection: content.Subjects,
		Filters:    []Filter{{Attribute: "grade", Value: "form-2"}},
	})
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if total != 4 || len(filtered) != 4 {
		t.Errorf("Expected 4 form-2 subjects, got %d (total %d)", len(filtered), total)
	}
}

func TestListDocumentsSearch(t *testing.T) {
	db := setupTestDB(t)

	seed := map[string]string{"n1": "Cell Biology", "n2": "Organic Chemistry", "n3": "100% effort"}
	for id, title := range seed {
		if _, err := CreateDocument(db, CreateInput{Collection: content.Notes, DocumentID: id, Data: map[string]interface{}{"title": title, "subject": "s1"}}); err != nil {
			t.Fatalf("CreateDocument failed: %v", err)
		}
	}

	tests := []struct {
		search string
		want   int
	}{
		{"biology", 1},
		{"CHEM", 1},
		{"s1", 3},
		{"%", 3},
		{"physics", 0},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			docs, total, err := ListDocuments(db, ListQuery{Collection: content.Notes, Search: tt.search})
			if err != nil {
				t.Fatalf("ListDocuments failed: %v", err)
			}
			if total != int64(tt.want) || len(docs) != tt.want {
				t.Errorf("Expected %d matches, got %d (total %d)", tt.want, len(docs), total)
			}
		})
	}
}

func TestListDocumentsLimitBounds(t *testing.T) {
	db := setupTestDB(t)

	for i := 0; i < DefaultPageSize+2; i++ {
		if _, err := CreateDocument(db, CreateInput{Collection: "misc", Data: map[string]interface{}{"n": i}}); err != nil {
			t.Fatalf("CreateDocument failed: %v", err)
		}
	}

	page, _, err := ListDocuments(db, ListQuery{Collection: "misc"})
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(page) != DefaultPageSize {
		t.Errorf("Expected default page of %d, got %d", DefaultPageSize, len(page))
	}

	page, _, err = ListDocuments(db, ListQuery{Collection: "misc", Limit: 1000})
	if err != nil {
		t.Fatalf("ListDocuments failed: %v", err)
	}
	if len(page) != DefaultPageSize+2 {
		t.Errorf("Expected all %d documents under the cap, got %d", DefaultPageSize+2, len(page))
	}
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("subject:s1:extra")
	if err != nil {
		t.Fatalf("ParseFilter failed: %v", err)
	}
	if f.Attribute != "subject" || f.Value != "s1:extra" {
		t.Errorf("Unexpected filter %+v", f)
	}

	if _, err := ParseFilter("nocolon"); !errors.Is(err, content.ErrInvalid) {
		t.Errorf("Expected ErrInvalid, got %v", err)
	}
}

func TestUpdateDocument(t *testing.T) {
	db := setupTestDB(t)

	if _, err := CreateDocument(db, CreateInput{
		Collection: content.Subjects,
		DocumentID: "s1",
		Data:       map[string]interface{}{"name": "Math", "grade": "form-2", "creator": "admin"},
	}); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	updated, err := UpdateDocument(db, content.Subjects, "s1", 1, map[string]interface{}{
		"name":    "Mathematics",
		"creator": nil,
	})
	if err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}
	if updated["$version"] != "2" {
		t.Errorf("Expected version 2, got %v", updated["$version"])
	}
	if updated["name"] != "Mathematics" {
		t.Errorf("Expected updated name, got %v", updated["name"])
	}
	if _, ok := updated["creator"]; ok {
		t.Error("Expected creator to be removed")
	}

	// Stale version
	if _, err := UpdateDocument(db, content.Subjects, "s1", 1, map[string]interface{}{"name": "Stale"}); !errors.Is(err, ErrVersion) {
		t.Errorf("Expected ErrVersion, got %v", err)
	}

	// No change keeps the version
	same, err := UpdateDocument(db, content.Subjects, "s1", 2, map[string]interface{}{"name": "Mathematics"})
	if err != nil {
		t.Fatalf("UpdateDocument failed: %v", err)
	}
	if same["$version"] != "2" {
		t.Errorf("Expected version to stay 2, got %v", same["$version"])
	}

	if _, err := UpdateDocument(db, content.Subjects, "missing", 1, map[string]interface{}{"name": "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeleteDocument(t *testing.T) {
	db := setupTestDB(t)

	if _, err := CreateDocument(db, CreateInput{Collection: "misc", DocumentID: "d1", Data: map[string]interface{}{"a": 1}}); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}

	if err := DeleteDocument(db, "misc", "d1", 7); !errors.Is(err, ErrVersion) {
		t.Errorf("Expected ErrVersion, got %v", err)
	}
	if err := DeleteDocument(db, "misc", "d1", 1); err != nil {
		t.Fatalf("DeleteDocument failed: %v", err)
	}
	if _, err := GetDocument(db, "misc", "d1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
}

func TestSeedCollection(t *testing.T) {
	db := setupTestDB(t)
	raw := []byte(`[{"$id":"s1","name":"Math","grade":"form-1"},{"$id":"s2","name":"Biology","grade":"form-1"}]`)

	n, err := SeedCollection(db, content.Subjects, raw)
	if err != nil {
		t.Fatalf("SeedCollection failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 seeded, got %d", n)
	}

	// Not empty any more, so nothing is added
	n, err = SeedCollection(db, content.Subjects, raw)
	if err != nil {
		t.Fatalf("SeedCollection failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Expected 0 seeded on second run, got %d", n)
	}
}

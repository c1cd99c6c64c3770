package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/localnerve/jam-build-learnhub/internal/content"
)

const docsPath = "/api/databases/" + testDatabase + "/collections/"

func TestCreateAndListDocuments(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.userToken(t, "admin1", content.RoleAdmin)

	for i, grade := range []string{"form-1", "form-2", "form-2"} {
		resp := env.request(t, http.MethodPost, docsPath+"subjects/documents", admin, map[string]interface{}{
			"documentId": fmt.Sprintf("s%d", i),
			"data":       map[string]interface{}{"name": fmt.Sprintf("Subject %d", i), "grade": grade},
		})
		expectStatus(t, resp, http.StatusCreated)
		result := decodeBody(t, resp)
		if result["ok"] != true {
			t.Errorf("Expected ok true, got %v", result["ok"])
		}
	}

	// Public read, filtered
	resp := env.request(t, http.MethodGet, docsPath+"subjects/documents?filter=grade:form-2", "", nil)
	expectStatus(t, resp, http.StatusOK)
	result := decodeBody(t, resp)
	if result["total"] != float64(2) {
		t.Errorf("Expected total 2, got %v", result["total"])
	}
	docs, _ := result["documents"].([]interface{})
	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(docs))
	}

	// Cursor pagination
	resp = env.request(t, http.MethodGet, docsPath+"subjects/documents?limit=1&cursorAfter=s0", "", nil)
	expectStatus(t, resp, http.StatusOK)
	result = decodeBody(t, resp)
	docs, _ = result["documents"].([]interface{})
	if len(docs) != 1 || docs[0].(map[string]interface{})["$id"] != "s1" {
		t.Errorf("Expected only s1, got %v", docs)
	}
}

func TestListEmptyCollection(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.request(t, http.MethodGet, docsPath+"papers/documents", "", nil)
	expectStatus(t, resp, http.StatusOK)
	result := decodeBody(t, resp)
	docs, ok := result["documents"].([]interface{})
	if !ok || len(docs) != 0 {
		t.Errorf("Expected an empty documents array, got %v", result["documents"])
	}
}

func TestProjectAndDatabaseChecks(t *testing.T) {
	env := setupTestEnv(t)

	req := env.request(t, http.MethodGet, "/api/databases/other/collections/subjects/documents", "", nil)
	expectStatus(t, req, http.StatusNotFound)
	result := decodeBody(t, req)
	if result["type"] != "not_found" {
		t.Errorf("Expected not_found type, got %v", result["type"])
	}

	resp := env.request(t, http.MethodGet, docsPath+"subjects/documents?project=wrong", "", nil)
	expectStatus(t, resp, http.StatusOK) // header wins over the query parameter

	// Health needs no project header
	resp = env.request(t, http.MethodGet, "/api/health", "", nil)
	expectStatus(t, resp, http.StatusOK)
}

func TestContentWritesRequireAdmin(t *testing.T) {
	env := setupTestEnv(t)
	student := env.userToken(t, "student1", content.RoleStudent)

	body := map[string]interface{}{"data": map[string]interface{}{"name": "Math", "grade": "form-1"}}

	resp := env.request(t, http.MethodPost, docsPath+"subjects/documents", "", body)
	expectStatus(t, resp, http.StatusUnauthorized)

	resp = env.request(t, http.MethodPost, docsPath+"subjects/documents", student, body)
	expectStatus(t, resp, http.StatusForbidden)
	result := decodeBody(t, resp)
	if result["type"] != "data.authorization.admin" {
		t.Errorf("Expected admin authorization type, got %v", result["type"])
	}

	resp = env.request(t, http.MethodDelete, docsPath+"subjects/documents/s1?version=1", student, nil)
	expectStatus(t, resp, http.StatusForbidden)
}

func TestUpdateDocumentVersionConflict(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.userToken(t, "admin1", content.RoleAdmin)

	resp := env.request(t, http.MethodPost, docsPath+"tips/documents", admin, map[string]interface{}{
		"documentId": "tip1",
		"data":       map[string]interface{}{"title": "Sleep", "content": "Rest well", "status": content.TipDraft},
	})
	expectStatus(t, resp, http.StatusCreated)

	resp = env.request(t, http.MethodPatch, docsPath+"tips/documents/tip1", admin, map[string]interface{}{
		"version": "1",
		"data":    map[string]interface{}{"status": content.TipPublished},
	})
	expectStatus(t, resp, http.StatusOK)
	result := decodeBody(t, resp)
	doc := result["document"].(map[string]interface{})
	if doc["$version"] != "2" || doc["status"] != content.TipPublished {
		t.Errorf("Unexpected updated document %v", doc)
	}

	resp = env.request(t, http.MethodPatch, docsPath+"tips/documents/tip1", admin, map[string]interface{}{
		"version": 1,
		"data":    map[string]interface{}{"title": "Stale"},
	})
	expectStatus(t, resp, http.StatusConflict)
	result = decodeBody(t, resp)
	if result["versionError"] != true {
		t.Errorf("Expected versionError true, got %v", result["versionError"])
	}

	resp = env.request(t, http.MethodPatch, docsPath+"tips/documents/tip1", admin, map[string]interface{}{
		"version": 2,
		"data":    map[string]interface{}{"status": "archived"},
	})
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestDeleteDocument(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.userToken(t, "admin1", content.RoleAdmin)

	resp := env.request(t, http.MethodPost, docsPath+"notifications/documents", admin, map[string]interface{}{
		"documentId": "n1",
		"data":       map[string]interface{}{"title": "Exams", "message": "Start Monday"},
	})
	expectStatus(t, resp, http.StatusCreated)

	resp = env.request(t, http.MethodDelete, docsPath+"notifications/documents/n1", admin, map[string]interface{}{"version": "1"})
	expectStatus(t, resp, http.StatusNoContent)

	resp = env.request(t, http.MethodGet, docsPath+"notifications/documents/n1", "", nil)
	expectStatus(t, resp, http.StatusNotFound)
}

func TestProfilesArePrivate(t *testing.T) {
	env := setupTestEnv(t)
	alice := env.userToken(t, "alice", content.RoleStudent)
	bob := env.userToken(t, "bob", content.RoleStudent)
	admin := env.userToken(t, "admin1", content.RoleAdmin)

	resp := env.request(t, http.MethodGet, docsPath+"users/documents", "", nil)
	expectStatus(t, resp, http.StatusUnauthorized)

	resp = env.request(t, http.MethodGet, docsPath+"users/documents", alice, nil)
	expectStatus(t, resp, http.StatusOK)
	result := decodeBody(t, resp)
	if result["total"] != float64(1) {
		t.Errorf("Expected a student to see only their profile, got total %v", result["total"])
	}

	resp = env.request(t, http.MethodGet, docsPath+"users/documents/bob", alice, nil)
	expectStatus(t, resp, http.StatusNotFound)

	resp = env.request(t, http.MethodGet, docsPath+"users/documents/bob", bob, nil)
	expectStatus(t, resp, http.StatusOK)

	resp = env.request(t, http.MethodGet, docsPath+"users/documents", admin, nil)
	expectStatus(t, resp, http.StatusOK)
	result = decodeBody(t, resp)
	if result["total"] != float64(3) {
		t.Errorf("Expected admin to see 3 profiles, got %v", result["total"])
	}
}

func TestSelfProfileEdits(t *testing.T) {
	env := setupTestEnv(t)
	alice := env.userToken(t, "alice", content.RoleStudent)

	resp := env.request(t, http.MethodPatch, docsPath+"users/documents/alice", alice, map[string]interface{}{
		"version": "1",
		"data":    map[string]interface{}{"bio": "Form 2 student"},
	})
	expectStatus(t, resp, http.StatusOK)

	resp = env.request(t, http.MethodPatch, docsPath+"users/documents/alice", alice, map[string]interface{}{
		"version": "2",
		"data":    map[string]interface{}{"role": content.RoleAdmin},
	})
	expectStatus(t, resp, http.StatusForbidden)
}

func TestNumericAttributesRoundTrip(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.userToken(t, "admin1", content.RoleAdmin)

	resp := env.request(t, http.MethodPost, docsPath+"papers/documents", admin, map[string]interface{}{
		"documentId": "p2021",
		"data": map[string]interface{}{
			"title":     "KCSE Mathematics",
			"subject":   "math",
			"year":      2021,
			"marks":     98.5,
			"published": true,
			"tags":      []string{"kcse", "paper-1"},
		},
	})
	expectStatus(t, resp, http.StatusCreated)

	resp = env.request(t, http.MethodGet, docsPath+"papers/documents", "", nil)
	expectStatus(t, resp, http.StatusOK)
	docs, _ := decodeBody(t, resp)["documents"].([]interface{})
	if len(docs) != 1 {
		t.Fatalf("Expected 1 paper, got %d", len(docs))
	}
	paper := docs[0].(map[string]interface{})
	if paper["year"] != float64(2021) || paper["marks"] != 98.5 || paper["published"] != true {
		t.Errorf("Scalar attributes did not round-trip: %v", paper)
	}
	if tags, _ := paper["tags"].([]interface{}); len(tags) != 2 {
		t.Errorf("Expected 2 tags, got %v", paper["tags"])
	}

	resp = env.request(t, http.MethodGet, docsPath+"papers/documents?filter=year:2021", "", nil)
	expectStatus(t, resp, http.StatusOK)
	if total := decodeBody(t, resp)["total"]; total != float64(1) {
		t.Errorf("Expected year filter to match 1 paper, got %v", total)
	}

	resp = env.request(t, http.MethodGet, docsPath+"papers/documents/p2021", "", nil)
	expectStatus(t, resp, http.StatusOK)
	doc := decodeBody(t, resp)
	if doc["$id"] != "p2021" || doc["$collection"] != "papers" || doc["$version"] != "1" || doc["year"] != float64(2021) {
		t.Errorf("Unexpected document %v", doc)
	}
}

func TestTopicCountFollowsTopics(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.userToken(t, "admin1", content.RoleAdmin)

	for _, id := range []string{"math", "chem"} {
		resp := env.request(t, http.MethodPost, docsPath+"subjects/documents", admin, map[string]interface{}{
			"documentId": id,
			"data":       map[string]interface{}{"name": id, "grade": "form-1"},
		})
		expectStatus(t, resp, http.StatusCreated)
	}

	topicCount := func(subject string) interface{} {
		t.Helper()
		resp := env.request(t, http.MethodGet, docsPath+"subjects/documents/"+subject, "", nil)
		expectStatus(t, resp, http.StatusOK)
		return decodeBody(t, resp)["topic_count"]
	}

	for _, id := range []string{"t1", "t2"} {
		resp := env.request(t, http.MethodPost, docsPath+"topics/documents", admin, map[string]interface{}{
			"documentId": id,
			"data":       map[string]interface{}{"title": id, "subject": "math"},
		})
		expectStatus(t, resp, http.StatusCreated)
	}
	if got := topicCount("math"); got != float64(2) {
		t.Errorf("Expected math topic_count 2, got %v", got)
	}

	// Moving a topic updates both subjects
	resp := env.request(t, http.MethodPatch, docsPath+"topics/documents/t2", admin, map[string]interface{}{
		"version": "1",
		"data":    map[string]interface{}{"subject": "chem"},
	})
	expectStatus(t, resp, http.StatusOK)
	if got := topicCount("math"); got != float64(1) {
		t.Errorf("Expected math topic_count 1 after move, got %v", got)
	}
	if got := topicCount("chem"); got != float64(1) {
		t.Errorf("Expected chem topic_count 1 after move, got %v", got)
	}

	resp = env.request(t, http.MethodDelete, docsPath+"topics/documents/t1?version=1", admin, nil)
	expectStatus(t, resp, http.StatusNoContent)
	if got := topicCount("math"); got != float64(0) {
		t.Errorf("Expected math topic_count 0 after delete, got %v", got)
	}

	// A topic pointing at a missing subject is accepted
	resp = env.request(t, http.MethodPost, docsPath+"topics/documents", admin, map[string]interface{}{
		"documentId": "t3",
		"data":       map[string]interface{}{"title": "orphan", "subject": "history"},
	})
	expectStatus(t, resp, http.StatusCreated)
}

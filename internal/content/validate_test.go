package content

import (
	"errors"
	"testing"
)

func TestValidateSignUp(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		user     string
		wantErr  bool
	}{
		{"valid", "amina@example.com", "secret1", "Amina", false},
		{"bad email", "amina@example", "secret1", "Amina", true},
		{"short password", "amina@example.com", "12345", "Amina", true},
		{"blank name", "amina@example.com", "secret1", "  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSignUp(tt.email, tt.password, tt.user)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestValidateAttributes(t *testing.T) {
	tests := []struct {
		name       string
		collection string
		data       map[string]interface{}
		partial    bool
		wantErr    bool
	}{
		{"empty", Subjects, map[string]interface{}{}, false, true},
		{"reserved name", Subjects, map[string]interface{}{"$id": "x", "name": "Math", "grade": "form-1"}, false, true},
		{"subject ok", Subjects, map[string]interface{}{"name": "Math", "grade": "form-1"}, false, false},
		{"subject missing grade", Subjects, map[string]interface{}{"name": "Math"}, false, true},
		{"partial skips missing", Subjects, map[string]interface{}{"name": "Math"}, true, false},
		{"partial null required", Subjects, map[string]interface{}{"name": nil}, true, true},
		{"blank required", Topics, map[string]interface{}{"title": " ", "subject": "s1"}, false, true},
		{"tip bad status", Tips, map[string]interface{}{"title": "a", "content": "b", "status": "live"}, false, true},
		{"tip published", Tips, map[string]interface{}{"title": "a", "content": "b", "status": TipPublished}, false, false},
		{"user bad role", Users, map[string]interface{}{"name": "a", "email": "a@b.co", "role": "root"}, false, true},
		{"unknown collection", "bookmarks", map[string]interface{}{"anything": 1}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAttributes(tt.collection, tt.data, tt.partial)
			if (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestMirrorKey(t *testing.T) {
	if got := MirrorKey(Subjects); got != "subjects" {
		t.Errorf("Expected subjects, got %s", got)
	}
	if got := MirrorKey(Notes, "subject:s1", "topic:t1"); got != "notes?subject:s1&topic:t1" {
		t.Errorf("Unexpected key %s", got)
	}
}

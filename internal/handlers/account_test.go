// account_test.go
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

package handlers_test

import (
	"net/http"
	"testing"

	"github.com/localnerve/jam-build-learnhub/internal/content"
)

func TestAccountSignUpAndSession(t *testing.T) {
	env := setupTestEnv(t)

	signup := map[string]interface{}{"email": "ada@example.com", "password": "secret1", "name": "Ada"}
	resp := env.request(t, http.MethodPost, "/api/account", "", signup)
	expectStatus(t, resp, http.StatusCreated)
	profile := decodeBody(t, resp)
	if profile["role"] != content.RoleStudent {
		t.Errorf("Expected student role, got %v", profile["role"])
	}

	resp = env.request(t, http.MethodPost, "/api/account", "", signup)
	expectStatus(t, resp, http.StatusConflict)
	result := decodeBody(t, resp)
	if result["type"] != "user_already_exists" {
		t.Errorf("Expected user_already_exists, got %v", result["type"])
	}

	resp = env.request(t, http.MethodPost, "/api/account/sessions", "", map[string]interface{}{"email": "ada@example.com", "password": "nope12"})
	expectStatus(t, resp, http.StatusUnauthorized)

	resp = env.request(t, http.MethodPost, "/api/account/sessions", "", map[string]interface{}{"email": "ada@example.com", "password": "secret1"})
	expectStatus(t, resp, http.StatusCreated)
	session := decodeBody(t, resp)
	token, _ := session["token"].(string)
	if token == "" {
		t.Fatal("Expected a session token")
	}

	resp = env.request(t, http.MethodGet, "/api/account", token, nil)
	expectStatus(t, resp, http.StatusOK)
	me := decodeBody(t, resp)
	if me["email"] != "ada@example.com" {
		t.Errorf("Expected own profile, got %v", me)
	}
}

func TestAccountSignUpValidation(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.request(t, http.MethodPost, "/api/account", "", map[string]interface{}{"email": "ada", "password": "secret1", "name": "Ada"})
	expectStatus(t, resp, http.StatusBadRequest)
	result := decodeBody(t, resp)
	if result["type"] != "data.validation.input" {
		t.Errorf("Expected validation type, got %v", result["type"])
	}
}

func TestSetUserStatus(t *testing.T) {
	env := setupTestEnv(t)
	admin := env.userToken(t, "admin1", content.RoleAdmin)
	student := env.userToken(t, "student1", content.RoleStudent)

	resp := env.request(t, http.MethodPatch, "/api/users/student1/status", student, map[string]interface{}{"role": content.RoleAdmin})
	expectStatus(t, resp, http.StatusForbidden)

	resp = env.request(t, http.MethodPatch, "/api/users/student1/status", admin, map[string]interface{}{"active": false})
	expectStatus(t, resp, http.StatusOK)

	// A deactivated user is refused even with a valid token
	resp = env.request(t, http.MethodGet, "/api/account", student, nil)
	expectStatus(t, resp, http.StatusForbidden)

	resp = env.request(t, http.MethodPatch, "/api/users/nobody/status", admin, map[string]interface{}{"role": content.RoleTeacher})
	expectStatus(t, resp, http.StatusNotFound)
}

func TestUnknownRoute(t *testing.T) {
	env := setupTestEnv(t)

	resp := env.request(t, http.MethodGet, "/nowhere", "", nil)
	expectStatus(t, resp, http.StatusNotFound)
}

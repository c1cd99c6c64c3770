package content

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MinPasswordLength is the shortest password the sign-up form accepts
const MinPasswordLength = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid input")

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// ValidateSignUp checks the account form fields
func ValidateSignUp(email, password, name string) error {
	if !emailPattern.MatchString(email) {
		return invalid("email %q is not a valid address", email)
	}
	if len(password) < MinPasswordLength {
		return invalid("password must be at least %d characters", MinPasswordLength)
	}
	if strings.TrimSpace(name) == "" {
		return invalid("name is required")
	}
	return nil
}

// ValidateRole reports whether role is one of the known roles
func ValidateRole(role string) error {
	switch role {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return nil
	}
	return invalid("unknown role %q", role)
}

type rule struct {
	required []string
	check    func(data map[string]interface{}) error
}

var rules = map[string]rule{
	Users: {
		required: []string{"name", "email", "role"},
		check: func(data map[string]interface{}) error {
			if email, ok := data["email"].(string); ok && !emailPattern.MatchString(email) {
				return invalid("email %q is not a valid address", email)
			}
			if role, ok := data["role"].(string); ok {
				return ValidateRole(role)
			}
			return nil
		},
	},
	Subjects:      {required: []string{"name", "grade"}},
	Topics:        {required: []string{"title", "subject"}},
	Notes:         {required: []string{"title", "subject"}},
	Papers:        {required: []string{"title", "subject"}},
	Notifications: {required: []string{"title", "message"}},
	Tips: {
		required: []string{"title", "content", "status"},
		check: func(data map[string]interface{}) error {
			raw, present := data["status"]
			if !present {
				return nil
			}
			status, _ := raw.(string)
			if status != TipDraft && status != TipPublished {
				return invalid("tip status must be %q or %q", TipDraft, TipPublished)
			}
			return nil
		},
	},
}

// Known reports whether collection is one of the content collections
func Known(collection string) bool {
	_, ok := rules[collection]
	return ok
}

// ValidateAttributes checks attribute names and, for known collections,
// required attributes and enumerated values. When partial is true only the
// attributes present are checked (updates).
func ValidateAttributes(collection string, data map[string]interface{}, partial bool) error {
	if len(data) == 0 {
		return invalid("data is required")
	}
	for name := range data {
		if name == "" || strings.HasPrefix(name, "$") {
			return invalid("attribute name %q is reserved", name)
		}
		if len(name) > 255 {
			return invalid("attribute name is too long")
		}
	}

	r, ok := rules[collection]
	if !ok {
		return nil
	}

	for _, name := range r.required {
		v, present := data[name]
		if !present {
			if partial {
				continue
			}
			return invalid("%s.%s is required", collection, name)
		}
		if v == nil {
			return invalid("%s.%s is required", collection, name)
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			return invalid("%s.%s is required", collection, name)
		}
	}

	if r.check != nil {
		return r.check(data)
	}
	return nil
}

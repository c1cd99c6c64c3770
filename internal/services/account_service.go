package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/localnerve/jam-build-learnhub/internal/content"
	"gorm.io/gorm"
)

// ErrInactive is returned when a deactivated user tries to sign in
var ErrInactive = errors.New("account is deactivated")

// DefaultPlan is assigned to new profiles
const DefaultPlan = "free"

// SignUpInput is the account creation form
type SignUpInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
}

// Session is returned by CreateSession
type Session struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	Profile   DocumentResult `json:"profile"`
}

// Profile is the role and status information used for authorization
type Profile struct {
	UserID string
	Role   string
	Active bool
}

// CreateAccount registers an identity and creates its profile document
func CreateAccount(db *gorm.DB, accounts Accounts, in SignUpInput) (DocumentResult, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if err := content.ValidateSignUp(in.Email, in.Password, in.Name); err != nil {
		return nil, err
	}

	userID, err := accounts.SignUp(in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	return createProfile(db, userID, in.Email, in.Name, in.Phone)
}

func createProfile(db *gorm.DB, userID, email, name, phone string) (DocumentResult, error) {
	data := map[string]interface{}{
		"name":   name,
		"email":  email,
		"role":   content.RoleStudent,
		"plan":   DefaultPlan,
		"active": true,
	}
	if phone != "" {
		data["phone"] = phone
	}

	return CreateDocument(db, CreateInput{
		Collection: content.Users,
		DocumentID: userID,
		OwnerID:    userID,
		Data:       data,
	})
}

// CreateSession checks credentials and issues a session token.
// Identities created outside this service get a profile on first login.
func CreateSession(db *gorm.DB, accounts Accounts, tokens *TokenIssuer, email, password string) (*Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	userID, err := accounts.Login(email, password)
	if err != nil {
		return nil, err
	}

	profile, err := GetDocument(db, content.Users, userID)
	if errors.Is(err, ErrNotFound) {
		name, _, _ := strings.Cut(email, "@")
		profile, err = createProfile(db, userID, email, name, "")
	}
	if err != nil {
		return nil, err
	}
	if active, ok := profile["active"].(bool); ok && !active {
		return nil, ErrInactive
	}

	token, expires, err := tokens.IssueSession(userID)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, ExpiresAt: expires, Profile: profile}, nil
}

// LookupProfile returns the role and status of a user
func LookupProfile(db *gorm.DB, userID string) (*Profile, error) {
	doc, err := FindDocument(db, content.Users, userID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{UserID: userID, Role: content.RoleStudent, Active: true}
	for _, attr := range doc.Attributes {
		value, err := attr.AttributeValue.Decode()
		if err != nil {
			continue
		}
		switch attr.AttributeName {
		case "role":
			if role, ok := value.(string); ok {
				profile.Role = role
			}
		case "active":
			if active, ok := value.(bool); ok {
				profile.Active = active
			}
		}
	}
	return profile, nil
}

// StatusInput is an administrative role or activation change
type StatusInput struct {
	Role   *string `json:"role,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// SetUserStatus changes a user's role and/or active flag
func SetUserStatus(db *gorm.DB, userID string, in StatusInput) (DocumentResult, error) {
	data := map[string]interface{}{}
	if in.Role != nil {
		if err := content.ValidateRole(*in.Role); err != nil {
			return nil, err
		}
		data["role"] = *in.Role
	}
	if in.Active != nil {
		data["active"] = *in.Active
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: role or active is required", content.ErrInvalid)
	}

	return PatchDocumentUnversioned(db, content.Users, userID, data)
}

package middleware

import (
	"errors"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-learnhub/internal/content"
	"github.com/localnerve/jam-build-learnhub/internal/services"
	"github.com/localnerve/jam-build-learnhub/internal/types"
	"gorm.io/gorm"
)

// Locals keys set by the Authenticator
const (
	LocalsUserID = "userID"
	LocalsRole   = "role"
)

// SessionCookie is the Authorizer session cookie name
const SessionCookie = "cookie_session"

// Authenticator resolves the caller from a bearer token or an Authorizer
// session cookie, then loads role and status from the caller's profile.
type Authenticator struct {
	DB       *gorm.DB
	Tokens   *services.TokenIssuer
	Sessions services.SessionValidator
}

// Optional identifies the caller when credentials are present
func (a *Authenticator) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := a.identify(c, "data.authorization.user"); err != nil {
			return err
		}
		return c.Next()
	}
}

// Require rejects anonymous callers, and callers whose role is not in roles
// when roles are given.
func (a *Authenticator) Require(roles ...string) fiber.Handler {
	errorType := "data.authorization.user"
	if slices.Contains(roles, content.RoleAdmin) && len(roles) == 1 {
		errorType = "data.authorization.admin"
	}

	return func(c *fiber.Ctx) error {
		profile, err := a.identify(c, errorType)
		if err != nil {
			return err
		}
		if profile == nil {
			return types.NewError(fiber.StatusUnauthorized, errorType, "Authentication required")
		}
		if len(roles) > 0 && !slices.Contains(roles, profile.Role) {
			return types.NewError(fiber.StatusForbidden, errorType, "Role %q is not permitted", profile.Role)
		}
		return c.Next()
	}
}

func (a *Authenticator) identify(c *fiber.Ctx, errorType string) (*services.Profile, error) {
	var (
		userID string
		err    error
	)

	if bearer, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer "); ok && bearer != "" {
		userID, err = a.Tokens.ParseSession(bearer)
	} else if session := c.Cookies(SessionCookie); session != "" && a.Sessions != nil {
		userID, err = a.Sessions.ValidateSession(session)
	} else {
		return nil, nil
	}
	if err != nil {
		return nil, types.NewError(fiber.StatusForbidden, errorType, "Invalid session: %v", err)
	}

	profile, err := services.LookupProfile(a.DB, userID)
	if errors.Is(err, services.ErrNotFound) {
		profile = &services.Profile{UserID: userID, Role: content.RoleStudent, Active: true}
	} else if err != nil {
		return nil, err
	}
	if !profile.Active {
		return nil, types.NewError(fiber.StatusForbidden, errorType, "Account is deactivated")
	}

	c.Locals(LocalsUserID, profile.UserID)
	c.Locals(LocalsRole, profile.Role)
	return profile, nil
}

// UserID returns the authenticated user id, or "" for anonymous callers
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalsUserID).(string)
	return id
}

// Role returns the authenticated user's role, or "" for anonymous callers
func Role(c *fiber.Ctx) string {
	role, _ := c.Locals(LocalsRole).(string)
	return role
}

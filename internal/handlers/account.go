package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-learnhub/internal/content"
	"github.com/localnerve/jam-build-learnhub/internal/middleware"
	"github.com/localnerve/jam-build-learnhub/internal/services"
	"github.com/localnerve/jam-build-learnhub/internal/utils"
	"gorm.io/gorm"
)

// AccountHandler handles account, session and profile status routes
type AccountHandler struct {
	DB       *gorm.DB
	Accounts services.Accounts
	Tokens   *services.TokenIssuer
}

// CreateAccount handles POST /api/account
// @Summary Create account
// @Description Registers an identity and its student profile
// @Tags Account
// @Accept json
// @Produce json
// @Param body body services.SignUpInput true "Sign-up form"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Router /account [post]
func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	var body services.SignUpInput
	if err := c.BodyParser(&body); err != nil {
		return invalidInput(c, "Invalid input")
	}

	profile, err := services.CreateAccount(h.DB, h.Accounts, body)
	if err != nil {
		return serviceError(c, err, "createAccount")
	}
	return c.Status(fiber.StatusCreated).JSON(profile)
}

// CreateSession handles POST /api/account/sessions
// @Summary Create session
// @Tags Account
// @Accept json
// @Produce json
// @Param body body object true "{email, password}"
// @Success 201 {object} services.Session
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Router /account/sessions [post]
func (h *AccountHandler) CreateSession(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil || body.Email == "" || body.Password == "" {
		return invalidInput(c, "email and password are required")
	}

	session, err := services.CreateSession(h.DB, h.Accounts, h.Tokens, body.Email, body.Password)
	if err != nil {
		return serviceError(c, err, "createSession")
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

// GetAccount handles GET /api/account
// @Summary Get the caller's profile
// @Tags Account
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /account [get]
func (h *AccountHandler) GetAccount(c *fiber.Ctx) error {
	profile, err := services.GetDocument(h.DB, content.Users, middleware.UserID(c))
	if err != nil {
		return serviceError(c, err, "getAccount")
	}
	return c.Status(fiber.StatusOK).JSON(profile)
}

// SetUserStatus handles PATCH /api/users/:id/status
// @Summary Change a user's role or active flag
// @Tags Account
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param body body services.StatusInput true "Role and/or active flag"
// @Success 200 {object} utils.MutationResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{id}/status [patch]
func (h *AccountHandler) SetUserStatus(c *fiber.Ctx) error {
	var body services.StatusInput
	if err := c.BodyParser(&body); err != nil {
		return invalidInput(c, "Invalid input")
	}

	profile, err := services.SetUserStatus(h.DB, c.Params("id"), body)
	if err != nil {
		return serviceError(c, err, "setUserStatus")
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, profile)
}

// common.go
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

package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-learnhub/internal/content"
	"github.com/localnerve/jam-build-learnhub/internal/services"
	"github.com/localnerve/jam-build-learnhub/internal/utils"
)

// parseFilters collects repeated "filter=attribute:value" query parameters
func parseFilters(c *fiber.Ctx) ([]services.Filter, error) {
	var filters []services.Filter
	for _, raw := range c.Context().QueryArgs().PeekMulti("filter") {
		f, err := services.ParseFilter(string(raw))
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}

// parseLimit reads the "limit" query parameter, 0 when absent
func parseLimit(c *fiber.Ctx) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, errors.New("limit must be a non-negative integer")
	}
	return limit, nil
}

// serviceError maps service errors to the standard error envelope
func serviceError(c *fiber.Ctx, err error, operation string) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFoundResponse(c, "Resource not found")
	case errors.Is(err, services.ErrVersion):
		return utils.VersionErrorResponse(c)
	case errors.Is(err, services.ErrExists):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusConflict, "document_already_exists")
	case errors.Is(err, services.ErrEmailInUse):
		return utils.ErrorResponse(c, "A user with this email already exists", fiber.StatusConflict, "user_already_exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "user_invalid_credentials")
	case errors.Is(err, services.ErrInactive):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "user_blocked")
	case errors.Is(err, services.ErrInvalidToken):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "storage.authorization.token")
	case errors.Is(err, services.ErrFileTooLarge):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusRequestEntityTooLarge, "storage.validation.size")
	case errors.Is(err, services.ErrInvalidBucket):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "storage.validation.bucket")
	case errors.Is(err, content.ErrInvalid):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "data.validation.input")
	}
	return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, operation)
}

func invalidInput(c *fiber.Ctx, message string) error {
	return utils.ErrorResponse(c, message, fiber.StatusBadRequest, "data.validation.input")
}

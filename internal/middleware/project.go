package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/jam-build-learnhub/internal/types"
)

// ProjectHeader names the project a request is addressed to
const ProjectHeader = "X-Project-Id"

// ProjectMiddleware rejects requests addressed to another project and records
// the X-Api-Version header. The project may also be given as the "project"
// query parameter, for links opened by third-party viewers.
func ProjectMiddleware(projectID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		project := c.Get(ProjectHeader)
		if project == "" {
			project = c.Query("project")
		}
		if project != projectID {
			return types.NewError(fiber.StatusNotFound, "project", "Project %q not found", project)
		}

		version := c.Get("X-Api-Version", "1.0.0")
		if version == "1.0" {
			version = "1.0.0"
		}
		c.Locals("apiVersion", version)

		return c.Next()
	}
}

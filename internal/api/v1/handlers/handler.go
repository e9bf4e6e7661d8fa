package handlers

import (
	"database/sql"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// Handler carries the dependencies every route needs. The database handle
// and validator are passed in once at startup instead of living in package
// globals, so tests can wire their own.
type Handler struct {
	DB       *sql.DB
	Validate *validator.Validate
}

func New(db *sql.DB) *Handler {
	return &Handler{
		DB:       db,
		Validate: validator.New(),
	}
}

// Hello is the health check route
func (h *Handler) Hello(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Hello, ConnectHub is now connected to a database!",
	})
}

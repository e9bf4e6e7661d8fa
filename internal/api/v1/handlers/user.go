package handlers

import (
	"connecthub/internal/models"
	"connecthub/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// User handlers

// CreateUser registers a new user record
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	// struct UserRequest receives the input from the client
	type UserRequest struct {
		Name     string `json:"name" validate:"required"`
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
		Role     string `json:"role" validate:"required"`
	}

	var req UserRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create user", zap.Error(err))
		return c.Status(422).JSON(fiber.Map{
			"message": "Bad request",
			"success": false,
			"status":  422,
		})
	}

	// Validate required fields with the validator
	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during create user", zap.Error(err))
		return c.Status(422).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
			"success": false,
			"status":  422,
		})
	}

	// Hash the password using bcrypt with default cost.
	// Passwords are never stored in plaintext.
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.ErrorLogger.Error("Error hashing password", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error hashing password",
			"success": false,
			"status":  500,
		})
	}

	// Insert the user and read back the generated id and timestamp
	user := models.User{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	}
	err = h.DB.QueryRow(
		"INSERT INTO users (name, email, password, role) VALUES ($1, $2, $3, $4) RETURNING id, created_at",
		req.Name, req.Email, string(hashedPassword), req.Role,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		logger.ErrorLogger.Error("Error creating user", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error creating user",
			"success": false,
			"status":  500,
		})
	}

	// The response never carries the password, hashed or not
	logger.AuditLogger.Info("User created successfully", zap.Int("user_id", user.ID))
	return c.Status(201).JSON(user)
}

// GetAllUsers returns every user record
func (h *Handler) GetAllUsers(c *fiber.Ctx) error {
	rows, err := h.DB.Query("SELECT id, name, email, role, created_at FROM users ORDER BY id")
	if err != nil {
		logger.ErrorLogger.Error("Error fetching users", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error fetching users",
			"success": false,
			"status":  500,
		})
	}
	// Close the rows once done so the pooled connection is released
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.CreatedAt)
		if err != nil {
			logger.ErrorLogger.Error("Error scanning users", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{
				"message": "Error scanning users",
				"success": false,
				"status":  500,
			})
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating over users", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error iterating over users",
			"success": false,
			"status":  500,
		})
	}

	return c.JSON(users)
}

package handlers

import (
	"connecthub/internal/models"
	"connecthub/pkg/logger"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Job handlers

// scanJobs reads a result set of full job rows into a slice
func scanJobs(rows *sql.Rows) ([]models.Job, error) {
	jobs := []models.Job{}
	for rows.Next() {
		var job models.Job
		var category sql.NullString
		err := rows.Scan(&job.ID, &job.Title, &job.Description, &category, &job.UserID, &job.CreatedAt)
		if err != nil {
			return nil, err
		}
		if category.Valid {
			job.Category = &category.String
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// parseDateParam reads a required YYYY-MM-DD query parameter
func parseDateParam(c *fiber.Ctx, name string) (time.Time, error) {
	return time.Parse("2006-01-02", c.Query(name))
}

// CreateJob creates a new job posting
func (h *Handler) CreateJob(c *fiber.Ctx) error {
	// struct JobRequest receives the input from the client,
	// category is optional so it stays a pointer
	type JobRequest struct {
		Title       string  `json:"title" validate:"required"`
		Description string  `json:"description" validate:"required"`
		Category    *string `json:"category"`
		UserID      int     `json:"user_id" validate:"required"`
	}

	var req JobRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create job", zap.Error(err))
		return c.Status(422).JSON(fiber.Map{
			"message": "Bad request",
			"success": false,
			"status":  422,
		})
	}

	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error during create job", zap.Error(err))
		return c.Status(422).JSON(fiber.Map{
			"message": "Validation error",
			"errors":  err.Error(),
			"success": false,
			"status":  422,
		})
	}

	// Insert the job and read back the generated id and timestamp.
	// A nil category is stored as NULL.
	job := models.Job{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		UserID:      req.UserID,
	}
	err := h.DB.QueryRow(
		"INSERT INTO jobs (title, description, category, user_id) VALUES ($1, $2, $3, $4) RETURNING id, created_at",
		req.Title, req.Description, req.Category, req.UserID,
	).Scan(&job.ID, &job.CreatedAt)
	if err != nil {
		logger.ErrorLogger.Error("Error creating job", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error creating job",
			"success": false,
			"status":  500,
		})
	}

	logger.AuditLogger.Info("Job created successfully", zap.Int("job_id", job.ID))
	return c.Status(201).JSON(job)
}

// GetAllJobs returns every job record
func (h *Handler) GetAllJobs(c *fiber.Ctx) error {
	rows, err := h.DB.Query(
		"SELECT id, title, description, category, user_id, created_at FROM jobs ORDER BY id")
	if err != nil {
		logger.ErrorLogger.Error("Error fetching jobs", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error fetching jobs",
			"success": false,
			"status":  500,
		})
	}
	defer rows.Close()

	jobs, err := scanJobs(rows)
	if err != nil {
		logger.ErrorLogger.Error("Error scanning jobs", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error scanning jobs",
			"success": false,
			"status":  500,
		})
	}

	return c.JSON(jobs)
}

// GetJobsByUser returns the jobs posted by one user.
// An unknown user id yields an empty list, not an error.
func (h *Handler) GetJobsByUser(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("user_id")
	if err != nil {
		logger.ErrorLogger.Error("Invalid user ID", zap.Error(err))
		return c.Status(422).JSON(fiber.Map{
			"message": "Invalid user ID",
			"success": false,
			"status":  422,
		})
	}

	rows, err := h.DB.Query(
		"SELECT id, title, description, category, user_id, created_at FROM jobs WHERE user_id = $1 ORDER BY id",
		userID)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching jobs by user", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error fetching jobs by user",
			"success": false,
			"status":  500,
		})
	}
	defer rows.Close()

	jobs, err := scanJobs(rows)
	if err != nil {
		logger.ErrorLogger.Error("Error scanning jobs by user", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error scanning jobs by user",
			"success": false,
			"status":  500,
		})
	}

	return c.JSON(jobs)
}

// GetJobsByCategory returns the jobs in one category (exact match)
func (h *Handler) GetJobsByCategory(c *fiber.Ctx) error {
	category := c.Params("category")

	rows, err := h.DB.Query(
		"SELECT id, title, description, category, user_id, created_at FROM jobs WHERE category = $1 ORDER BY id",
		category)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching jobs by category", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error fetching jobs by category",
			"success": false,
			"status":  500,
		})
	}
	defer rows.Close()

	jobs, err := scanJobs(rows)
	if err != nil {
		logger.ErrorLogger.Error("Error scanning jobs by category", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error scanning jobs by category",
			"success": false,
			"status":  500,
		})
	}

	return c.JSON(jobs)
}

// GetJobsByDates returns the jobs created within an inclusive date range.
// Both from_date and to_date are required as YYYY-MM-DD.
func (h *Handler) GetJobsByDates(c *fiber.Ctx) error {
	fromDate, err := parseDateParam(c, "from_date")
	if err != nil {
		logger.AuditLogger.Warn("Invalid from_date", zap.Error(err))
		return c.Status(422).JSON(fiber.Map{
			"message": "Invalid or missing from_date, expected YYYY-MM-DD",
			"success": false,
			"status":  422,
		})
	}
	toDate, err := parseDateParam(c, "to_date")
	if err != nil {
		logger.AuditLogger.Warn("Invalid to_date", zap.Error(err))
		return c.Status(422).JSON(fiber.Map{
			"message": "Invalid or missing to_date, expected YYYY-MM-DD",
			"success": false,
			"status":  422,
		})
	}

	// Compare on the date portion so to_date covers its whole day
	rows, err := h.DB.Query(
		`SELECT id, title, description, category, user_id, created_at FROM jobs
		 WHERE created_at::date >= $1 AND created_at::date <= $2 ORDER BY id`,
		fromDate, toDate)
	if err != nil {
		logger.ErrorLogger.Error("Error fetching jobs by dates", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error fetching jobs by dates",
			"success": false,
			"status":  500,
		})
	}
	defer rows.Close()

	jobs, err := scanJobs(rows)
	if err != nil {
		logger.ErrorLogger.Error("Error scanning jobs by dates", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error scanning jobs by dates",
			"success": false,
			"status":  500,
		})
	}

	return c.JSON(jobs)
}

package handlers

import (
	"connecthub/pkg/logger"
	"database/sql"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Analytics handlers. Every route here is a pure read: group, count,
// reshape, return.

// uncategorizedKey stands in for a NULL category, JSON object keys
// cannot be null
const uncategorizedKey = "uncategorized"

// roundTwo rounds to 2 decimal places
func roundTwo(v float64) float64 {
	return math.Round(v*100) / 100
}

// weekStartUTC returns the most recent Monday at 00:00 UTC, counting a
// Monday itself as its own week start
func weekStartUTC(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// todayUTC returns midnight of the current UTC date
func todayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

const dateLayout = "2006-01-02"

// countsByDay runs a day-bucket count query and reshapes the rows into
// ordered {date, count} pairs
func countsByDay(db *sql.DB, query string, args ...interface{}) ([]fiber.Map, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := []fiber.Map{}
	for rows.Next() {
		var day time.Time
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		buckets = append(buckets, fiber.Map{
			"date":  day.Format(dateLayout),
			"count": count,
		})
	}
	return buckets, rows.Err()
}

// JobsPerCategory counts jobs per category, NULL categories get their
// own bucket. An empty store yields an empty mapping.
func (h *Handler) JobsPerCategory(c *fiber.Ctx) error {
	rows, err := h.DB.Query(
		"SELECT category, COUNT(id) FROM jobs GROUP BY category ORDER BY category")
	if err != nil {
		logger.ErrorLogger.Error("Error counting jobs per category", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error counting jobs per category",
			"success": false,
			"status":  500,
		})
	}
	defer rows.Close()

	result := map[string]int{}
	for rows.Next() {
		var category sql.NullString
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			logger.ErrorLogger.Error("Error scanning jobs per category", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{
				"message": "Error scanning jobs per category",
				"success": false,
				"status":  500,
			})
		}
		key := uncategorizedKey
		if category.Valid {
			key = category.String
		}
		result[key] = count
	}

	if err = rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating jobs per category", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error iterating jobs per category",
			"success": false,
			"status":  500,
		})
	}

	return c.JSON(fiber.Map{"jobs_per_category": result})
}

// JobsByUser counts jobs per user name. The LEFT JOIN keeps users with
// no jobs at count 0.
func (h *Handler) JobsByUser(c *fiber.Ctx) error {
	result, err := h.countsByName(
		`SELECT u.name, COUNT(j.id) FROM users u
		 LEFT JOIN jobs j ON u.id = j.user_id
		 GROUP BY u.name ORDER BY u.name`)
	if err != nil {
		logger.ErrorLogger.Error("Error counting jobs by user", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error counting jobs by user",
			"success": false,
			"status":  500,
		})
	}
	return c.JSON(fiber.Map{"jobs_by_user": result})
}

// JobsPerUser is like JobsByUser but groups by user id, so two users
// sharing a name do not collapse into one bucket until keyed by name
func (h *Handler) JobsPerUser(c *fiber.Ctx) error {
	result, err := h.countsByName(
		`SELECT u.name, COUNT(j.id) FROM users u
		 LEFT JOIN jobs j ON u.id = j.user_id
		 GROUP BY u.id, u.name ORDER BY u.id`)
	if err != nil {
		logger.ErrorLogger.Error("Error counting jobs per user", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error counting jobs per user",
			"success": false,
			"status":  500,
		})
	}
	return c.JSON(fiber.Map{"jobs_per_user": result})
}

// countsByName reshapes (name, count) rows into a mapping
func (h *Handler) countsByName(query string) (map[string]int, error) {
	rows, err := h.DB.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := map[string]int{}
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, err
		}
		result[name] = count
	}
	return result, rows.Err()
}

// JobsByDay counts jobs per calendar day of creation
func (h *Handler) JobsByDay(c *fiber.Ctx) error {
	result, err := h.countsByDayMap()
	if err != nil {
		logger.ErrorLogger.Error("Error counting jobs by day", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error counting jobs by day",
			"success": false,
			"status":  500,
		})
	}
	return c.JSON(fiber.Map{"jobs_by_day": result})
}

// JobsPerDay is the same computation as JobsByDay under the route the
// dashboard ended up using
func (h *Handler) JobsPerDay(c *fiber.Ctx) error {
	result, err := h.countsByDayMap()
	if err != nil {
		logger.ErrorLogger.Error("Error counting jobs per day", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error counting jobs per day",
			"success": false,
			"status":  500,
		})
	}
	return c.JSON(fiber.Map{"jobs_per_day": result})
}

func (h *Handler) countsByDayMap() (map[string]int, error) {
	rows, err := h.DB.Query(
		"SELECT created_at::date AS day, COUNT(id) FROM jobs GROUP BY day ORDER BY day")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := map[string]int{}
	for rows.Next() {
		var day time.Time
		var count int
		if err := rows.Scan(&day, &count); err != nil {
			return nil, err
		}
		result[day.Format(dateLayout)] = count
	}
	return result, rows.Err()
}

// JobsPercentageByCategory computes each category's share of all jobs,
// rounded to 2 decimals. NULL and empty categories are excluded from the
// mapping but still count toward the total, so the shares sum to at most
// 100. With no jobs at all the mapping is empty instead of dividing by
// zero.
func (h *Handler) JobsPercentageByCategory(c *fiber.Ctx) error {
	var total int
	if err := h.DB.QueryRow("SELECT COUNT(id) FROM jobs").Scan(&total); err != nil {
		logger.ErrorLogger.Error("Error counting jobs", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error counting jobs",
			"success": false,
			"status":  500,
		})
	}

	percentages := map[string]float64{}
	if total == 0 {
		return c.JSON(fiber.Map{"jobs_percentage_by_category": percentages})
	}

	rows, err := h.DB.Query(
		`SELECT category, COUNT(id) FROM jobs
		 WHERE category IS NOT NULL AND category <> ''
		 GROUP BY category ORDER BY category`)
	if err != nil {
		logger.ErrorLogger.Error("Error counting jobs percentage by category", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error counting jobs percentage by category",
			"success": false,
			"status":  500,
		})
	}
	defer rows.Close()

	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			logger.ErrorLogger.Error("Error scanning jobs percentage by category", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{
				"message": "Error scanning jobs percentage by category",
				"success": false,
				"status":  500,
			})
		}
		percentages[category] = roundTwo(float64(count) / float64(total) * 100)
	}

	if err = rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating jobs percentage by category", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error iterating jobs percentage by category",
			"success": false,
			"status":  500,
		})
	}

	return c.JSON(fiber.Map{"jobs_percentage_by_category": percentages})
}

// Overview returns the dashboard headline numbers: totals plus jobs
// created since UTC midnight and since the most recent Monday UTC
func (h *Handler) Overview(c *fiber.Ctx) error {
	var totalUsers, totalJobs, jobsToday, jobsThisWeek int

	if err := h.DB.QueryRow("SELECT COUNT(id) FROM users").Scan(&totalUsers); err != nil {
		return h.overviewError(c, err)
	}
	if err := h.DB.QueryRow("SELECT COUNT(id) FROM jobs").Scan(&totalJobs); err != nil {
		return h.overviewError(c, err)
	}

	now := time.Now()
	if err := h.DB.QueryRow(
		"SELECT COUNT(id) FROM jobs WHERE created_at >= $1", todayUTC(now),
	).Scan(&jobsToday); err != nil {
		return h.overviewError(c, err)
	}
	if err := h.DB.QueryRow(
		"SELECT COUNT(id) FROM jobs WHERE created_at >= $1", weekStartUTC(now),
	).Scan(&jobsThisWeek); err != nil {
		return h.overviewError(c, err)
	}

	return c.JSON(fiber.Map{
		"total_users":    totalUsers,
		"total_jobs":     totalJobs,
		"jobs_today":     jobsToday,
		"jobs_this_week": jobsThisWeek,
	})
}

func (h *Handler) overviewError(c *fiber.Ctx, err error) error {
	logger.ErrorLogger.Error("Error building overview", zap.Error(err))
	return c.Status(500).JSON(fiber.Map{
		"message": "Error building overview",
		"success": false,
		"status":  500,
	})
}

// JobsByCategoryCounts returns category counts as {category, count}
// pairs, NULL categories serialize as null
func (h *Handler) JobsByCategoryCounts(c *fiber.Ctx) error {
	rows, err := h.DB.Query(
		"SELECT category, COUNT(id) FROM jobs GROUP BY category ORDER BY category")
	if err != nil {
		logger.ErrorLogger.Error("Error counting jobs by category", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error counting jobs by category",
			"success": false,
			"status":  500,
		})
	}
	defer rows.Close()

	result := []fiber.Map{}
	for rows.Next() {
		var category sql.NullString
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			logger.ErrorLogger.Error("Error scanning jobs by category", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{
				"message": "Error scanning jobs by category",
				"success": false,
				"status":  500,
			})
		}
		var cat *string
		if category.Valid {
			cat = &category.String
		}
		result = append(result, fiber.Map{"category": cat, "count": count})
	}

	if err = rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating jobs by category", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error iterating jobs by category",
			"success": false,
			"status":  500,
		})
	}

	return c.JSON(result)
}

// JobsByEmployer returns job counts per posting user id
func (h *Handler) JobsByEmployer(c *fiber.Ctx) error {
	rows, err := h.DB.Query(
		"SELECT user_id, COUNT(id) FROM jobs GROUP BY user_id ORDER BY user_id")
	if err != nil {
		logger.ErrorLogger.Error("Error counting jobs by employer", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error counting jobs by employer",
			"success": false,
			"status":  500,
		})
	}
	defer rows.Close()

	result := []fiber.Map{}
	for rows.Next() {
		var userID, count int
		if err := rows.Scan(&userID, &count); err != nil {
			logger.ErrorLogger.Error("Error scanning jobs by employer", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{
				"message": "Error scanning jobs by employer",
				"success": false,
				"status":  500,
			})
		}
		result = append(result, fiber.Map{"user_id": userID, "count": count})
	}

	if err = rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating jobs by employer", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error iterating jobs by employer",
			"success": false,
			"status":  500,
		})
	}

	return c.JSON(result)
}

// UserRegistrations returns new-user counts per calendar day
func (h *Handler) UserRegistrations(c *fiber.Ctx) error {
	result, err := countsByDay(h.DB,
		"SELECT created_at::date AS day, COUNT(id) FROM users GROUP BY day ORDER BY day")
	if err != nil {
		logger.ErrorLogger.Error("Error counting user registrations", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error counting user registrations",
			"success": false,
			"status":  500,
		})
	}
	return c.JSON(result)
}

// JobsByDateRange returns day-bucketed job counts within an inclusive
// date range. Both bounds are required as YYYY-MM-DD.
func (h *Handler) JobsByDateRange(c *fiber.Ctx) error {
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

	result, err := countsByDay(h.DB,
		`SELECT created_at::date AS day, COUNT(id) FROM jobs
		 WHERE created_at::date >= $1 AND created_at::date <= $2
		 GROUP BY day ORDER BY day`,
		fromDate, toDate)
	if err != nil {
		logger.ErrorLogger.Error("Error counting jobs by date range", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error counting jobs by date range",
			"success": false,
			"status":  500,
		})
	}
	return c.JSON(result)
}

// ActiveUsers returns user counts grouped by role
func (h *Handler) ActiveUsers(c *fiber.Ctx) error {
	rows, err := h.DB.Query(
		"SELECT role, COUNT(id) FROM users GROUP BY role ORDER BY role")
	if err != nil {
		logger.ErrorLogger.Error("Error counting active users", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error counting active users",
			"success": false,
			"status":  500,
		})
	}
	defer rows.Close()

	result := []fiber.Map{}
	for rows.Next() {
		var role string
		var count int
		if err := rows.Scan(&role, &count); err != nil {
			logger.ErrorLogger.Error("Error scanning active users", zap.Error(err))
			return c.Status(500).JSON(fiber.Map{
				"message": "Error scanning active users",
				"success": false,
				"status":  500,
			})
		}
		result = append(result, fiber.Map{"role": role, "count": count})
	}

	if err = rows.Err(); err != nil {
		logger.ErrorLogger.Error("Error iterating active users", zap.Error(err))
		return c.Status(500).JSON(fiber.Map{
			"message": "Error iterating active users",
			"success": false,
			"status":  500,
		})
	}

	return c.JSON(result)
}

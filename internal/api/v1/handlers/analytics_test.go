package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
)

// getJSON issues a GET request and decodes the body into out
func getJSON(t *testing.T, app *fiber.App, path string, out interface{}) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request %s failed: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Request %s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("Error decoding %s response: %v", path, err)
	}
}

func TestJobsPerCategory(t *testing.T) {
	resetTables(t)
	app := newTestApp()

	userID := insertTestUser(t, "alice", "alice@example.com", "admin")
	insertTestJob(t, userID, "Job 1", strPtr("eng"))
	insertTestJob(t, userID, "Job 2", strPtr("eng"))
	insertTestJob(t, userID, "Job 3", strPtr("design"))
	insertTestJob(t, userID, "Job 4", nil)

	var result map[string]map[string]int
	getJSON(t, app, "/analytics/jobs-per-category", &result)

	counts := result["jobs_per_category"]
	if counts["eng"] != 2 {
		t.Errorf("Expected 2 eng jobs but got %d", counts["eng"])
	}
	if counts["design"] != 1 {
		t.Errorf("Expected 1 design job but got %d", counts["design"])
	}
	if counts["uncategorized"] != 1 {
		t.Errorf("Expected 1 uncategorized job but got %d", counts["uncategorized"])
	}
}

func TestJobsPerCategoryEmpty(t *testing.T) {
	resetTables(t)
	app := newTestApp()

	// With no jobs the mapping is empty, not a sentinel message
	var result map[string]map[string]int
	getJSON(t, app, "/analytics/jobs-per-category", &result)

	counts, found := result["jobs_per_category"]
	if !found {
		t.Fatalf("Expected jobs_per_category key in response")
	}
	if len(counts) != 0 {
		t.Errorf("Expected empty mapping but got %v", counts)
	}
}

func TestJobsByUser(t *testing.T) {
	resetTables(t)
	app := newTestApp()

	aliceID := insertTestUser(t, "alice", "alice@example.com", "admin")
	insertTestUser(t, "bob", "bob@example.com", "member")
	insertTestJob(t, aliceID, "Job 1", strPtr("eng"))
	insertTestJob(t, aliceID, "Job 2", nil)

	var result map[string]map[string]int
	getJSON(t, app, "/analytics/jobs-by-user", &result)

	counts := result["jobs_by_user"]
	if counts["alice"] != 2 {
		t.Errorf("Expected 2 jobs for alice but got %d", counts["alice"])
	}
	// bob has no jobs but must still appear with count 0
	if count, found := counts["bob"]; !found || count != 0 {
		t.Errorf("Expected bob with count 0 but got %v (present=%v)", count, found)
	}
}

func TestJobsPerUser(t *testing.T) {
	resetTables(t)
	app := newTestApp()

	aliceID := insertTestUser(t, "alice", "alice@example.com", "admin")
	bobID := insertTestUser(t, "bob", "bob@example.com", "member")
	for i := 0; i < 3; i++ {
		insertTestJob(t, aliceID, "Alice Job", strPtr("eng"))
	}
	insertTestJob(t, bobID, "Bob Job", nil)

	var result map[string]map[string]int
	getJSON(t, app, "/analytics/jobs-per-user", &result)

	counts := result["jobs_per_user"]
	if counts["alice"] != 3 {
		t.Errorf("Expected 3 jobs for alice but got %d", counts["alice"])
	}
	if counts["bob"] != 1 {
		t.Errorf("Expected 1 job for bob but got %d", counts["bob"])
	}
}

func TestJobsByDay(t *testing.T) {
	resetTables(t)
	app := newTestApp()

	userID := insertTestUser(t, "alice", "alice@example.com", "admin")
	day1 := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC)
	insertTestJobAt(t, userID, "Job 1", nil, day1)
	insertTestJobAt(t, userID, "Job 2", nil, day1)
	insertTestJobAt(t, userID, "Job 3", nil, day2)

	var result map[string]map[string]int
	getJSON(t, app, "/analytics/jobs-by-day", &result)

	counts := result["jobs_by_day"]
	if counts["2024-03-10"] != 2 {
		t.Errorf("Expected 2 jobs on 2024-03-10 but got %d", counts["2024-03-10"])
	}
	if counts["2024-03-11"] != 1 {
		t.Errorf("Expected 1 job on 2024-03-11 but got %d", counts["2024-03-11"])
	}

	// jobs-per-day serves the same buckets under its own key
	var perDay map[string]map[string]int
	getJSON(t, app, "/analytics/jobs-per-day", &perDay)
	if perDay["jobs_per_day"]["2024-03-10"] != 2 {
		t.Errorf("Expected jobs-per-day to match jobs-by-day buckets")
	}
}

func TestJobsPercentageByCategory(t *testing.T) {
	resetTables(t)
	app := newTestApp()

	userID := insertTestUser(t, "alice", "alice@example.com", "admin")
	insertTestJob(t, userID, "Job 1", strPtr("eng"))
	insertTestJob(t, userID, "Job 2", strPtr("eng"))
	insertTestJob(t, userID, "Job 3", strPtr("design"))

	var result map[string]map[string]float64
	getJSON(t, app, "/analytics/jobs-percentage-by-category", &result)

	percentages := result["jobs_percentage_by_category"]
	if percentages["eng"] != 66.67 {
		t.Errorf("Expected eng at 66.67 but got %v", percentages["eng"])
	}
	if percentages["design"] != 33.33 {
		t.Errorf("Expected design at 33.33 but got %v", percentages["design"])
	}
}

func TestJobsPercentageByCategoryExcludesNull(t *testing.T) {
	resetTables(t)
	app := newTestApp()

	userID := insertTestUser(t, "alice", "alice@example.com", "admin")
	insertTestJob(t, userID, "Job 1", strPtr("eng"))
	insertTestJob(t, userID, "Job 2", nil)
	insertTestJob(t, userID, "Job 3", nil)
	insertTestJob(t, userID, "Job 4", nil)

	var result map[string]map[string]float64
	getJSON(t, app, "/analytics/jobs-percentage-by-category", &result)

	percentages := result["jobs_percentage_by_category"]
	// NULL categories are not listed, but they still count in the total
	if len(percentages) != 1 {
		t.Errorf("Expected only eng in the mapping but got %v", percentages)
	}
	if percentages["eng"] != 25.0 {
		t.Errorf("Expected eng at 25 but got %v", percentages["eng"])
	}
}

func TestJobsPercentageByCategoryNoJobs(t *testing.T) {
	resetTables(t)
	app := newTestApp()

	// Zero jobs must not divide by zero, the mapping comes back empty
	var result map[string]map[string]float64
	getJSON(t, app, "/analytics/jobs-percentage-by-category", &result)

	percentages, found := result["jobs_percentage_by_category"]
	if !found {
		t.Fatalf("Expected jobs_percentage_by_category key in response")
	}
	if len(percentages) != 0 {
		t.Errorf("Expected empty mapping but got %v", percentages)
	}
}

func TestOverview(t *testing.T) {
	resetTables(t)
	app := newTestApp()

	aliceID := insertTestUser(t, "alice", "alice@example.com", "admin")
	insertTestUser(t, "bob", "bob@example.com", "member")
	insertTestJob(t, aliceID, "Fresh Job 1", strPtr("eng"))
	insertTestJob(t, aliceID, "Fresh Job 2", nil)
	// An old job counts toward the total but not today or this week
	insertTestJobAt(t, aliceID, "Ancient Job", nil, time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC))

	var result map[string]int
	getJSON(t, app, "/analytics/overview", &result)

	if result["total_users"] != 2 {
		t.Errorf("Expected 2 total users but got %d", result["total_users"])
	}
	if result["total_jobs"] != 3 {
		t.Errorf("Expected 3 total jobs but got %d", result["total_jobs"])
	}
	if result["jobs_today"] != 2 {
		t.Errorf("Expected 2 jobs today but got %d", result["jobs_today"])
	}
	if result["jobs_this_week"] != 2 {
		t.Errorf("Expected 2 jobs this week but got %d", result["jobs_this_week"])
	}
}

func TestJobsByCategoryCounts(t *testing.T) {
	resetTables(t)
	app := newTestApp()

	userID := insertTestUser(t, "alice", "alice@example.com", "admin")
	insertTestJob(t, userID, "Job 1", strPtr("eng"))
	insertTestJob(t, userID, "Job 2", strPtr("eng"))
	insertTestJob(t, userID, "Job 3", nil)

	var result []map[string]interface{}
	getJSON(t, app, "/analytics/jobs/by_category", &result)

	if len(result) != 2 {
		t.Fatalf("Expected 2 category buckets but got %d", len(result))
	}
	found := map[string]bool{}
	for _, bucket := range result {
		if bucket["category"] == "eng" {
			found["eng"] = true
			if bucket["count"].(float64) != 2 {
				t.Errorf("Expected 2 eng jobs but got %v", bucket["count"])
			}
		}
		if bucket["category"] == nil {
			found["null"] = true
			if bucket["count"].(float64) != 1 {
				t.Errorf("Expected 1 null-category job but got %v", bucket["count"])
			}
		}
	}
	if !found["eng"] || !found["null"] {
		t.Errorf("Expected both eng and null buckets, got %v", result)
	}
}

func TestJobsByEmployer(t *testing.T) {
	resetTables(t)
	app := newTestApp()

	aliceID := insertTestUser(t, "alice", "alice@example.com", "admin")
	bobID := insertTestUser(t, "bob", "bob@example.com", "member")
	insertTestJob(t, aliceID, "Job 1", nil)
	insertTestJob(t, aliceID, "Job 2", nil)
	insertTestJob(t, bobID, "Job 3", nil)

	var result []map[string]interface{}
	getJSON(t, app, "/analytics/jobs/by_employer", &result)

	if len(result) != 2 {
		t.Fatalf("Expected 2 employer buckets but got %d", len(result))
	}
	counts := map[int]int{}
	for _, bucket := range result {
		counts[int(bucket["user_id"].(float64))] = int(bucket["count"].(float64))
	}
	if counts[aliceID] != 2 {
		t.Errorf("Expected 2 jobs for user %d but got %d", aliceID, counts[aliceID])
	}
	if counts[bobID] != 1 {
		t.Errorf("Expected 1 job for user %d but got %d", bobID, counts[bobID])
	}
}

func TestUserRegistrations(t *testing.T) {
	resetTables(t)
	app := newTestApp()

	insertTestUser(t, "alice", "alice@example.com", "admin")
	insertTestUser(t, "bob", "bob@example.com", "member")

	var result []map[string]interface{}
	getJSON(t, app, "/analytics/users/registrations", &result)

	if len(result) != 1 {
		t.Fatalf("Expected 1 registration bucket but got %d", len(result))
	}
	if result[0]["count"].(float64) != 2 {
		t.Errorf("Expected 2 registrations in the bucket but got %v", result[0]["count"])
	}
	if date, ok := result[0]["date"].(string); !ok || len(date) != len("2006-01-02") {
		t.Errorf("Expected a YYYY-MM-DD date but got %v", result[0]["date"])
	}
}

func TestJobsByDateRange(t *testing.T) {
	resetTables(t)
	app := newTestApp()

	userID := insertTestUser(t, "alice", "alice@example.com", "admin")
	insertTestJobAt(t, userID, "Job 1", nil, time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC))
	insertTestJobAt(t, userID, "Job 2", nil, time.Date(2024, 1, 5, 15, 0, 0, 0, time.UTC))
	insertTestJobAt(t, userID, "Job 3", nil, time.Date(2024, 1, 31, 22, 0, 0, 0, time.UTC))
	insertTestJobAt(t, userID, "Job 4", nil, time.Date(2024, 2, 1, 0, 30, 0, 0, time.UTC))

	var result []map[string]interface{}
	getJSON(t, app, "/analytics/jobs/by_date?from_date=2024-01-01&to_date=2024-01-31", &result)

	if len(result) != 2 {
		t.Fatalf("Expected 2 day buckets in January but got %d", len(result))
	}
	buckets := map[string]int{}
	for _, b := range result {
		buckets[b["date"].(string)] = int(b["count"].(float64))
	}
	if buckets["2024-01-05"] != 2 {
		t.Errorf("Expected 2 jobs on 2024-01-05 but got %d", buckets["2024-01-05"])
	}
	// to_date is inclusive, the late evening job on the 31st is in range
	if buckets["2024-01-31"] != 1 {
		t.Errorf("Expected 1 job on 2024-01-31 but got %d", buckets["2024-01-31"])
	}
}

func TestJobsByDateRangeMissingParams(t *testing.T) {
	resetTables(t)
	app := newTestApp()

	req := httptest.NewRequest("GET", "/analytics/jobs/by_date", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Jobs by date request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("Expected status %d but got %d", http.StatusUnprocessableEntity, resp.StatusCode)
	}
}

func TestActiveUsers(t *testing.T) {
	resetTables(t)
	app := newTestApp()

	insertTestUser(t, "alice", "alice@example.com", "admin")
	insertTestUser(t, "bob", "bob@example.com", "admin")
	insertTestUser(t, "carol", "carol@example.com", "member")

	var result []map[string]interface{}
	getJSON(t, app, "/analytics/active-users", &result)

	if len(result) != 2 {
		t.Fatalf("Expected 2 role buckets but got %d", len(result))
	}
	counts := map[string]int{}
	for _, bucket := range result {
		counts[bucket["role"].(string)] = int(bucket["count"].(float64))
	}
	if counts["admin"] != 2 {
		t.Errorf("Expected 2 admins but got %d", counts["admin"])
	}
	if counts["member"] != 1 {
		t.Errorf("Expected 1 member but got %d", counts["member"])
	}
}

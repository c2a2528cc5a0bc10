// internal/storage/sqlite.go
package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"mcp-meal-risk/internal/models"
)

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS meals (
        id TEXT PRIMARY KEY,
        description TEXT NOT NULL,
        timestamp DATETIME NOT NULL,
        carbs_g REAL NOT NULL,
        gi REAL NOT NULL,
        fat_g REAL NOT NULL,
        protein_g REAL NOT NULL,
        fiber_g REAL NOT NULL,
        sugar_g REAL NOT NULL,
        calories REAL NOT NULL,
        risk_score REAL NOT NULL,
        risk_rating TEXT NOT NULL,
        curve_shape TEXT NOT NULL,
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL,
        source TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS foods (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        meal_id TEXT NOT NULL,
        name TEXT NOT NULL,
        quantity TEXT NOT NULL,
        carbs_g REAL NOT NULL,
        gi REAL NOT NULL,
        fat_g REAL NOT NULL,
        protein_g REAL NOT NULL,
        fiber_g REAL NOT NULL,
        sugar_g REAL NOT NULL,
        calories REAL NOT NULL,
        confidence TEXT NOT NULL,
        FOREIGN KEY (meal_id) REFERENCES meals(id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_meals_timestamp ON meals(timestamp);
    CREATE INDEX IF NOT EXISTS idx_foods_meal_id ON foods(meal_id);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) SaveMeal(meal *models.Meal) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	mealQuery := `
        INSERT INTO meals (id, description, timestamp,
            carbs_g, gi, fat_g, protein_g, fiber_g, sugar_g, calories,
            risk_score, risk_rating, curve_shape,
            created_at, updated_at, source)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	// Timestamps are stored as RFC3339 text so SQLite's date functions
	// can read them; queryMeals parses the same format back out.
	m := meal.Macros
	_, err = tx.Exec(mealQuery,
		meal.ID, meal.Description, meal.Timestamp.Format(time.RFC3339),
		m.CarbsG, m.GI, m.FatG, m.ProteinG, m.FiberG, m.SugarG, m.Calories,
		meal.RiskScore, string(meal.RiskRating), meal.CurveShape,
		meal.CreatedAt.Format(time.RFC3339), meal.UpdatedAt.Format(time.RFC3339), meal.Source)
	if err != nil {
		return fmt.Errorf("failed to insert meal: %w", err)
	}

	foodQuery := `
        INSERT INTO foods (meal_id, name, quantity,
            carbs_g, gi, fat_g, protein_g, fiber_g, sugar_g, calories, confidence)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	for _, food := range meal.Foods {
		fm := food.Macros
		_, err = tx.Exec(foodQuery,
			meal.ID, food.Name, food.Quantity,
			fm.CarbsG, fm.GI, fm.FatG, fm.ProteinG, fm.FiberG, fm.SugarG, fm.Calories,
			string(food.Confidence))
		if err != nil {
			return fmt.Errorf("failed to insert food: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStorage) GetMeals(startDate, endDate string, limit int) ([]*models.Meal, error) {
	query := `
        SELECT id, description, timestamp,
            carbs_g, gi, fat_g, protein_g, fiber_g, sugar_g, calories,
            risk_score, risk_rating, curve_shape,
            created_at, updated_at, source
        FROM meals
        WHERE 1=1
    `
	args := []interface{}{}

	if startDate != "" {
		query += " AND DATE(timestamp) >= ?"
		args = append(args, startDate)
	}
	if endDate != "" {
		query += " AND DATE(timestamp) <= ?"
		args = append(args, endDate)
	}

	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	return s.queryMeals(query, args...)
}

// GetMealsForDay returns every meal logged on the given date (YYYY-MM-DD),
// oldest first. The caller uses the result's length as the day's meal count
// for daily-target checks.
func (s *SQLiteStorage) GetMealsForDay(date string) ([]*models.Meal, error) {
	query := `
        SELECT id, description, timestamp,
            carbs_g, gi, fat_g, protein_g, fiber_g, sugar_g, calories,
            risk_score, risk_rating, curve_shape,
            created_at, updated_at, source
        FROM meals
        WHERE DATE(timestamp) = ?
        ORDER BY timestamp ASC
    `
	return s.queryMeals(query, date)
}

// DayTotals aggregates a day's logged macros and meal count.
func (s *SQLiteStorage) DayTotals(date string) (models.Macros, int, error) {
	query := `
        SELECT COUNT(*),
            COALESCE(SUM(carbs_g), 0),
            COALESCE(SUM(fat_g), 0),
            COALESCE(SUM(protein_g), 0),
            COALESCE(SUM(fiber_g), 0),
            COALESCE(SUM(sugar_g), 0),
            COALESCE(SUM(calories), 0)
        FROM meals
        WHERE DATE(timestamp) = ?
    `
	var totals models.Macros
	var count int
	err := s.db.QueryRow(query, date).Scan(
		&count, &totals.CarbsG, &totals.FatG, &totals.ProteinG,
		&totals.FiberG, &totals.SugarG, &totals.Calories)
	if err != nil {
		return models.Macros{}, 0, fmt.Errorf("failed to aggregate day totals: %w", err)
	}
	return totals, count, nil
}

func (s *SQLiteStorage) queryMeals(query string, args ...interface{}) ([]*models.Meal, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query meals: %w", err)
	}
	defer rows.Close()

	var meals []*models.Meal
	for rows.Next() {
		meal := &models.Meal{}
		var timestampStr, createdAtStr, updatedAtStr string
		var ratingStr string

		m := &meal.Macros
		err := rows.Scan(
			&meal.ID, &meal.Description, &timestampStr,
			&m.CarbsG, &m.GI, &m.FatG, &m.ProteinG, &m.FiberG, &m.SugarG, &m.Calories,
			&meal.RiskScore, &ratingStr, &meal.CurveShape,
			&createdAtStr, &updatedAtStr, &meal.Source)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}

		if meal.Timestamp, err = time.Parse(time.RFC3339, timestampStr); err != nil {
			return nil, fmt.Errorf("failed to parse timestamp: %w", err)
		}
		if meal.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		if meal.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}

		meal.RiskRating = models.Rating(ratingStr)

		if err := s.loadFoodsForMeal(meal); err != nil {
			return nil, fmt.Errorf("failed to load foods for meal %s: %w", meal.ID, err)
		}

		meals = append(meals, meal)
	}

	return meals, rows.Err()
}

func (s *SQLiteStorage) loadFoodsForMeal(meal *models.Meal) error {
	query := `
        SELECT name, quantity,
            carbs_g, gi, fat_g, protein_g, fiber_g, sugar_g, calories, confidence
        FROM foods
        WHERE meal_id = ?
        ORDER BY id
    `

	rows, err := s.db.Query(query, meal.ID)
	if err != nil {
		return fmt.Errorf("failed to query foods: %w", err)
	}
	defer rows.Close()

	var foods []models.Food
	for rows.Next() {
		food := models.Food{}
		var confidenceStr string

		fm := &food.Macros
		err := rows.Scan(
			&food.Name, &food.Quantity,
			&fm.CarbsG, &fm.GI, &fm.FatG, &fm.ProteinG, &fm.FiberG, &fm.SugarG, &fm.Calories,
			&confidenceStr)
		if err != nil {
			return fmt.Errorf("failed to scan food: %w", err)
		}

		food.Confidence = models.ConfidenceLevel(confidenceStr)
		foods = append(foods, food)
	}

	meal.Foods = foods
	return rows.Err()
}

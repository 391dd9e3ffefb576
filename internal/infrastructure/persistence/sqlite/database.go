// Package sqlite provides SQLite database setup and configuration
package sqlite

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	gormModels "github.com/alchemorsel/foodgram/internal/infrastructure/persistence/gorm"
)

const memoryPath = ":memory:"

// SetupDatabase opens the SQLite database at dbPath with foreign keys
// enforced and migrates the schema. An empty path opens a private in-memory
// database. A nil log silences GORM.
func SetupDatabase(dbPath string, log logger.Interface) (*gorm.DB, error) {
	if log == nil {
		log = logger.Default.LogMode(logger.Silent)
	}

	// Use in-memory database if no path provided
	if dbPath == "" {
		dbPath = memoryPath
	}

	db, err := gorm.Open(sqlite.Open(dsn(dbPath)), &gorm.Config{
		Logger:         log,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	// Each connection to :memory: is a separate database.
	if dbPath == memoryPath {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run auto-migration
	if err := db.AutoMigrate(gormModels.AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func dsn(path string) string {
	const params = "_foreign_keys=on&_busy_timeout=5000"
	if path == memoryPath {
		return "file::memory:?" + params
	}
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	return path + "?" + params
}

// DefaultTags is the tag set a fresh database starts with.
var DefaultTags = []gormModels.TagModel{
	{Name: "Завтрак", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Обед", Color: "#49B64E", Slug: "lunch"},
	{Name: "Ужин", Color: "#8775D2", Slug: "dinner"},
}

// DefaultIngredients is a small starter catalog for development databases.
var DefaultIngredients = []gormModels.IngredientModel{
	{Name: "яйца", MeasurementUnit: "шт."},
	{Name: "молоко", MeasurementUnit: "мл"},
	{Name: "мука", MeasurementUnit: "г"},
	{Name: "соль", MeasurementUnit: "по вкусу"},
	{Name: "сахар", MeasurementUnit: "г"},
}

// SeedDatabase populates the catalog tables. Existing rows are kept.
func SeedDatabase(db *gorm.DB) error {
	tags := append([]gormModels.TagModel(nil), DefaultTags...)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tags).Error; err != nil {
		return fmt.Errorf("failed to seed tags: %w", err)
	}

	ingredients := append([]gormModels.IngredientModel(nil), DefaultIngredients...)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&ingredients).Error; err != nil {
		return fmt.Errorf("failed to seed ingredients: %w", err)
	}

	return nil
}

// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	dbpkg "github.com/BruksfildServices01/consult-scheduler/internal/db"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

// NewDB opens a migrated in-memory SQLite store. A single connection keeps
// the in-memory database alive and serializes writers.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := dbpkg.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// NewPostgresDB connects to TEST_DATABASE_URL with a real connection pool,
// skipping the test when it is unset. Rows are not cleaned up; seed with
// fresh ids.
func NewPostgresDB(t *testing.T, maxConns int) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(maxConns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := dbpkg.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func SeedSpecialist(t *testing.T, db *gorm.DB) *models.Specialist {
	t.Helper()
	userID := uuid.New()
	sp := &models.Specialist{UserID: &userID, FullName: "Dr. Test", Specialty: "nutrition", IsAvailable: true}
	if err := db.Create(sp).Error; err != nil {
		t.Fatalf("seed specialist: %v", err)
	}
	return sp
}

func SeedSlot(t *testing.T, db *gorm.DB, specialistID uuid.UUID, date, hm string) *models.TimeSlot {
	t.Helper()
	slot := &models.TimeSlot{SpecialistID: specialistID, SlotDate: date, SlotTime: hm}
	if err := db.Omit("Specialist").Create(slot).Error; err != nil {
		t.Fatalf("seed slot: %v", err)
	}
	return slot
}

func SeedCourse(t *testing.T, db *gorm.DB, lessons int) *models.Course {
	t.Helper()
	course := &models.Course{Title: "Intro", LessonsCount: lessons}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}
	for i := 0; i < lessons; i++ {
		if err := db.Omit("Course").Create(&models.Lesson{CourseID: course.ID, Title: "lesson"}).Error; err != nil {
			t.Fatalf("seed lesson: %v", err)
		}
	}
	return course
}

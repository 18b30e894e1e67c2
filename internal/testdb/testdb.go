// Package testdb opens migrated throwaway SQLite databases for tests.
package testdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"patient-studies-server/internal/config"
	"patient-studies-server/internal/models"
)

// New returns a fresh migrated database living in t.TempDir().
func New(t testing.TB) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "studies_test.db")
	db, err := models.InitDB(models.DatabaseConfig{Driver: config.DriverSQLite, DSN: config.SQLiteDSN(path)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := models.Migrate(context.Background(), db, config.DriverSQLite, zerolog.Nop()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedCatalog inserts the given body part and type names.
func SeedCatalog(t testing.TB, db *gorm.DB, bodyParts, types []string) {
	t.Helper()
	for _, name := range bodyParts {
		if err := db.Create(&models.BodyPart{Name: name}).Error; err != nil {
			t.Fatalf("seed body part %q: %v", name, err)
		}
	}
	for _, name := range types {
		if err := db.Create(&models.StudyType{Name: name}).Error; err != nil {
			t.Fatalf("seed type %q: %v", name, err)
		}
	}
}

// CreatePatient inserts a patient with fixed demographics.
func CreatePatient(t testing.TB, db *gorm.DB, first, last string) models.Patient {
	t.Helper()
	p := models.Patient{
		FirstName: first,
		LastName:  last,
		BirthDate: models.NewDate(1980, 5, 17),
		Email:     first + "@example.com",
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return p
}

// CreateStudy inserts a study for patientID referencing catalog entries by name.
func CreateStudy(t testing.TB, db *gorm.DB, patientID uint, bodyPart, typ string) models.Study {
	t.Helper()
	part, err := models.FindBodyPart(db, bodyPart)
	if err != nil {
		t.Fatalf("find body part %q: %v", bodyPart, err)
	}
	studyType, err := models.FindStudyType(db, typ)
	if err != nil {
		t.Fatalf("find type %q: %v", typ, err)
	}
	s := models.Study{
		UrgencyLevel: models.UrgencyLow,
		BodyPartID:   part.ID,
		TypeID:       studyType.ID,
		PatientID:    patientID,
		Description:  "routine check",
	}
	if err := db.Omit(clause.Associations).Create(&s).Error; err != nil {
		t.Fatalf("create study: %v", err)
	}
	return s
}

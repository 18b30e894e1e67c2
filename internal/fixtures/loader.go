// Package fixtures imports dumped records in bulk.
//
// A fixture file is a JSON array of {"model", "pk", "fields"} records.
// Each file is loaded in one transaction: an unknown model or a bad record
// rolls the whole file back.
package fixtures

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"patient-studies-server/internal/accounts"
	"patient-studies-server/internal/models"
)

// Record is one fixture entry.
type Record struct {
	Model  string          `json:"model"`
	PK     uint            `json:"pk"`
	Fields json.RawMessage `json:"fields"`
}

type patientFields struct {
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	BirthDate models.Date `json:"birth_date"`
	Email     string      `json:"email"`
}

type catalogFields struct {
	Name string `json:"name"`
}

type studyFields struct {
	UrgencyLevel models.Urgency `json:"urgency_level"`
	BodyPart     uint           `json:"body_part"`
	Description  string         `json:"description"`
	Type         uint           `json:"type"`
	Patient      uint           `json:"patient"`
}

type userFields struct {
	Username    string    `json:"username"`
	Password    string    `json:"password"`
	IsActive    bool      `json:"is_active"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	DateJoined  time.Time `json:"date_joined"`
}

// Loader writes fixture records to the database.
type Loader struct {
	DB       *gorm.DB
	Accounts *accounts.Service
	Log      zerolog.Logger
}

// NewLoader creates a new Loader.
func NewLoader(db *gorm.DB, svc *accounts.Service, log zerolog.Logger) *Loader {
	return &Loader{DB: db, Accounts: svc, Log: log}
}

// LoadFile reads and loads one fixture file. It returns the number of
// records written.
func (l *Loader) LoadFile(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if err := l.Load(ctx, records); err != nil {
		return 0, fmt.Errorf("load fixture %s: %w", path, err)
	}
	l.Log.Info().Str("file", path).Int("records", len(records)).Msg("loaded fixture")
	return len(records), nil
}

// Load writes records in a single transaction.
func (l *Loader) Load(ctx context.Context, records []Record) error {
	return l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, rec := range records {
			if err := l.loadRecord(tx, rec); err != nil {
				return fmt.Errorf("record %d (%s): %w", i, rec.Model, err)
			}
		}
		return nil
	})
}

func (l *Loader) loadRecord(tx *gorm.DB, rec Record) error {
	switch rec.Model {
	case "api.patient":
		var f patientFields
		if err := json.Unmarshal(rec.Fields, &f); err != nil {
			return err
		}
		p := models.Patient{FirstName: f.FirstName, LastName: f.LastName, BirthDate: f.BirthDate, Email: f.Email}
		p.ID = rec.PK
		return tx.Omit(clause.Associations).Create(&p).Error

	case "api.bodypart":
		var f catalogFields
		if err := json.Unmarshal(rec.Fields, &f); err != nil {
			return err
		}
		part := models.BodyPart{Name: f.Name}
		part.ID = rec.PK
		return tx.Create(&part).Error

	case "api.type":
		var f catalogFields
		if err := json.Unmarshal(rec.Fields, &f); err != nil {
			return err
		}
		typ := models.StudyType{Name: f.Name}
		typ.ID = rec.PK
		return tx.Create(&typ).Error

	case "api.study":
		var f studyFields
		if err := json.Unmarshal(rec.Fields, &f); err != nil {
			return err
		}
		if !f.UrgencyLevel.Valid() {
			return fmt.Errorf("invalid urgency_level %q", f.UrgencyLevel)
		}
		s := models.Study{
			UrgencyLevel: f.UrgencyLevel,
			BodyPartID:   f.BodyPart,
			Description:  f.Description,
			TypeID:       f.Type,
			PatientID:    f.Patient,
		}
		s.ID = rec.PK
		return tx.Omit(clause.Associations).Create(&s).Error

	case "auth.user":
		var f userFields
		if err := json.Unmarshal(rec.Fields, &f); err != nil {
			return err
		}
		// Password is already hashed in a dump.
		u := models.User{
			Username:    f.Username,
			Password:    f.Password,
			IsActive:    f.IsActive,
			IsStaff:     f.IsStaff,
			IsSuperuser: f.IsSuperuser,
			DateJoined:  f.DateJoined,
		}
		u.ID = rec.PK
		_, err := l.Accounts.CreateUserTx(tx, &u, accounts.CreateOptions{Raw: true})
		return err
	}
	return fmt.Errorf("unknown model %q", rec.Model)
}

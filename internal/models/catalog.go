package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrProtected is returned when deleting a row that studies still reference.
var ErrProtected = errors.New("record is referenced by existing studies")

// BodyPart is a catalog entry naming the examined region of a study.
type BodyPart struct {
	BaseModel
	Name string `gorm:"size:50;not null;uniqueIndex" json:"name"`
}

func (BodyPart) TableName() string { return "body_part" }

func (b BodyPart) String() string { return b.Name }

// StudyType is a catalog entry naming the modality of a study.
type StudyType struct {
	BaseModel
	Name string `gorm:"size:50;not null;uniqueIndex" json:"name"`
}

func (StudyType) TableName() string { return "type" }

func (t StudyType) String() string { return t.Name }

// Catalog kinds.
const (
	CatalogBodyParts = "body parts"
	CatalogTypes     = "types"
)

// BodyPartNames returns every body part name in catalog order.
func BodyPartNames(tx *gorm.DB) ([]string, error) {
	var names []string
	err := tx.Model(&BodyPart{}).Order("name").Pluck("name", &names).Error
	return names, err
}

// StudyTypeNames returns every type name in catalog order.
func StudyTypeNames(tx *gorm.DB) ([]string, error) {
	var names []string
	err := tx.Model(&StudyType{}).Order("name").Pluck("name", &names).Error
	return names, err
}

// FindBodyPart looks a body part up by exact name. It returns
// gorm.ErrRecordNotFound when the catalog has no such entry.
func FindBodyPart(tx *gorm.DB, name string) (*BodyPart, error) {
	var part BodyPart
	if err := tx.Where("name = ?", name).First(&part).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

// FindStudyType looks a type up by exact name.
func FindStudyType(tx *gorm.DB, name string) (*StudyType, error) {
	var typ StudyType
	if err := tx.Where("name = ?", name).First(&typ).Error; err != nil {
		return nil, err
	}
	return &typ, nil
}

// DeleteBodyPart removes a body part unless a study references it.
func DeleteBodyPart(db *gorm.DB, id uint) error {
	return deleteUnreferenced(db, &BodyPart{}, "body_part_id", id)
}

// DeleteStudyType removes a type unless a study references it.
func DeleteStudyType(db *gorm.DB, id uint) error {
	return deleteUnreferenced(db, &StudyType{}, "type_id", id)
}

// DeletePatient removes a patient unless a study references it.
func DeletePatient(db *gorm.DB, id uint) error {
	return deleteUnreferenced(db, &Patient{}, "patient_id", id)
}

func deleteUnreferenced(db *gorm.DB, model any, column string, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(model, id).Error; err != nil {
			return err
		}

		var refs int64
		if err := tx.Model(&Study{}).Where(column+" = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("%w: %d studies", ErrProtected, refs)
		}

		return tx.Delete(model, id).Error
	})
}

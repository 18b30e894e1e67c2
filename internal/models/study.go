package models

// Urgency represents how soon a study must be performed
type Urgency string

const (
	UrgencyLow  Urgency = "LOW"
	UrgencyMid  Urgency = "MID"
	UrgencyHigh Urgency = "HIGH"
)

// Urgencies lists the urgency codes in display order.
var Urgencies = []Urgency{UrgencyLow, UrgencyMid, UrgencyHigh}

// Label returns the human readable name of the code.
func (u Urgency) Label() string {
	switch u {
	case UrgencyLow:
		return "Low"
	case UrgencyMid:
		return "Mid"
	case UrgencyHigh:
		return "High"
	}
	return string(u)
}

// Valid reports whether u is one of the known codes.
func (u Urgency) Valid() bool {
	for _, known := range Urgencies {
		if u == known {
			return true
		}
	}
	return false
}

// Study represents a medical study ordered for a patient.
type Study struct {
	BaseModel
	UrgencyLevel Urgency `gorm:"size:5;not null"`
	BodyPartID   uint    `gorm:"not null;index"`
	Description  string  `gorm:"type:text;not null"`
	TypeID       uint    `gorm:"not null;index"`
	PatientID    uint    `gorm:"not null;index"`

	// Relations
	BodyPart BodyPart  `gorm:"foreignKey:BodyPartID;constraint:OnDelete:RESTRICT"`
	Type     StudyType `gorm:"foreignKey:TypeID;constraint:OnDelete:RESTRICT"`
	Patient  Patient   `gorm:"foreignKey:PatientID;constraint:OnDelete:RESTRICT"`
}

func (Study) TableName() string { return "study" }

package models

// Patient represents a person who can have studies.
type Patient struct {
	BaseModel
	FirstName string `gorm:"size:50;not null" json:"first_name"`
	LastName  string `gorm:"size:50;not null" json:"last_name"`
	BirthDate Date   `gorm:"type:date;not null" json:"birth_date"`
	Email     string `gorm:"size:254;not null" json:"email"`

	Studies []Study `gorm:"foreignKey:PatientID" json:"-"`
}

func (Patient) TableName() string { return "patient" }

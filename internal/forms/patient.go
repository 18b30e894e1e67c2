package forms

import (
	"encoding/json"

	"patient-studies-server/internal/models"
	"patient-studies-server/internal/utils"
)

// PatientInput is the writable shape of a patient.
type PatientInput struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=50"`
	LastName  *string `json:"last_name" binding:"omitempty,max=50"`
	BirthDate *string `json:"birth_date"`
	Email     *string `json:"email" binding:"omitempty,email,max=254"`

	nulls nullKeys
}

// UnmarshalJSON decodes the fields and remembers which were sent as null.
func (in *PatientInput) UnmarshalJSON(data []byte) error {
	type plain PatientInput
	if err := json.Unmarshal(data, (*plain)(in)); err != nil {
		return err
	}
	nulls, err := readNullKeys(data)
	if err != nil {
		return err
	}
	in.nulls = nulls
	return nil
}

// Apply copies the supplied fields onto p. Nothing is copied when any
// field is invalid.
func (in PatientInput) Apply(p *models.Patient, mode Mode) utils.FieldErrors {
	errs := utils.FieldErrors{}
	next := *p

	if textField(errs, mode, in.nulls, "first_name", in.FirstName) {
		next.FirstName = *in.FirstName
	}
	if textField(errs, mode, in.nulls, "last_name", in.LastName) {
		next.LastName = *in.LastName
	}
	if textField(errs, mode, in.nulls, "birth_date", in.BirthDate) {
		date, err := models.ParseDate(*in.BirthDate)
		if err != nil {
			errs.Add("birth_date", "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
		} else {
			next.BirthDate = date
		}
	}
	if textField(errs, mode, in.nulls, "email", in.Email) {
		next.Email = *in.Email
	}

	if len(errs) > 0 {
		return errs
	}
	*p = next
	return nil
}

package forms

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"patient-studies-server/internal/models"
	"patient-studies-server/internal/utils"
)

// StudyInput is the writable shape of a study. The owning patient comes
// from the request path, never from the body.
type StudyInput struct {
	UrgencyLevel *string `json:"urgency_level"`
	BodyPart     *string `json:"body_part"`
	Description  *string `json:"description"`
	Type         *string `json:"type"`

	nulls nullKeys
}

// UnmarshalJSON decodes the fields and remembers which were sent as null.
func (in *StudyInput) UnmarshalJSON(data []byte) error {
	type plain StudyInput
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

// StudyView is the read representation of a study: catalog references
// are shown by name.
type StudyView struct {
	ID           uint           `json:"id"`
	UrgencyLevel models.Urgency `json:"urgency_level"`
	BodyPart     string         `json:"body_part"`
	Description  string         `json:"description"`
	Type         string         `json:"type"`
	Patient      uint           `json:"patient"`
}

// NewStudyView expects s to carry its BodyPart and Type.
func NewStudyView(s models.Study) StudyView {
	return StudyView{
		ID:           s.ID,
		UrgencyLevel: s.UrgencyLevel,
		BodyPart:     s.BodyPart.Name,
		Description:  s.Description,
		Type:         s.Type.Name,
		Patient:      s.PatientID,
	}
}

// NewStudyViews maps a slice of studies.
func NewStudyViews(studies []models.Study) []StudyView {
	views := make([]StudyView, 0, len(studies))
	for _, s := range studies {
		views = append(views, NewStudyView(s))
	}
	return views
}

// Apply resolves the supplied fields against the catalogs visible through
// tx and copies them onto s. Field problems come back as FieldErrors and
// leave s untouched; the error return is reserved for storage failures.
func (in StudyInput) Apply(tx *gorm.DB, s *models.Study, mode Mode) (utils.FieldErrors, error) {
	errs := utils.FieldErrors{}
	next := *s

	if textField(errs, mode, in.nulls, "urgency_level", in.UrgencyLevel) {
		urgency := models.Urgency(*in.UrgencyLevel)
		if urgency.Valid() {
			next.UrgencyLevel = urgency
		} else {
			errs.Add("urgency_level", fmt.Sprintf("%q is not a valid choice.", *in.UrgencyLevel))
		}
	}

	if textField(errs, mode, in.nulls, "body_part", in.BodyPart) {
		part, err := ResolveBodyPart(tx, *in.BodyPart)
		switch {
		case errors.Is(err, errNotInCatalog):
			errs.Add("body_part", err.Error())
		case err != nil:
			return nil, err
		default:
			next.BodyPart = *part
			next.BodyPartID = part.ID
		}
	}

	if textField(errs, mode, in.nulls, "description", in.Description) {
		next.Description = *in.Description
	}

	if textField(errs, mode, in.nulls, "type", in.Type) {
		typ, err := ResolveStudyType(tx, *in.Type)
		switch {
		case errors.Is(err, errNotInCatalog):
			errs.Add("type", err.Error())
		case err != nil:
			return nil, err
		default:
			next.Type = *typ
			next.TypeID = typ.ID
		}
	}

	if len(errs) > 0 {
		return errs, nil
	}
	*s = next
	return nil, nil
}

var errNotInCatalog = errors.New("not in catalog")

type catalogError struct {
	value   string
	catalog string
}

func (e *catalogError) Error() string {
	return fmt.Sprintf("%s is not in %s catalog", e.value, e.catalog)
}

func (e *catalogError) Is(target error) bool {
	return target == errNotInCatalog
}

// ResolveBodyPart maps a body part name to its catalog entry.
func ResolveBodyPart(tx *gorm.DB, name string) (*models.BodyPart, error) {
	part, err := models.FindBodyPart(tx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &catalogError{value: name, catalog: models.CatalogBodyParts}
	}
	return part, err
}

// ResolveStudyType maps a type name to its catalog entry.
func ResolveStudyType(tx *gorm.DB, name string) (*models.StudyType, error) {
	typ, err := models.FindStudyType(tx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &catalogError{value: name, catalog: models.CatalogTypes}
	}
	return typ, err
}

package forms

import (
	"strings"

	"gorm.io/gorm"

	"patient-studies-server/internal/models"
)

// Choice is one accepted value of an enumerated field.
type Choice struct {
	Value       string `json:"value"`
	DisplayName string `json:"display_name"`
}

// FieldInfo describes one input field for API clients.
type FieldInfo struct {
	Type      string   `json:"type"`
	Required  bool     `json:"required"`
	ReadOnly  bool     `json:"read_only"`
	Label     string   `json:"label"`
	HelpText  string   `json:"help_text,omitempty"`
	MaxLength int      `json:"max_length,omitempty"`
	Choices   []Choice `json:"choices,omitempty"`
}

// Metadata is the body of an OPTIONS response.
type Metadata struct {
	Name        string                          `json:"name"`
	Description string                          `json:"description"`
	Renders     []string                        `json:"renders"`
	Parses      []string                        `json:"parses"`
	Actions     map[string]map[string]FieldInfo `json:"actions,omitempty"`
}

// NewMetadata builds an OPTIONS body advertising fields for the given methods.
func NewMetadata(name, description string, fields map[string]FieldInfo, methods ...string) Metadata {
	md := Metadata{
		Name:        name,
		Description: description,
		Renders:     []string{"application/json"},
		Parses:      []string{"application/json"},
		Actions:     map[string]map[string]FieldInfo{},
	}
	for _, m := range methods {
		md.Actions[m] = fields
	}
	return md
}

// DescribeStudy lists the study fields with the catalogs as they are in tx
// right now. The owning patient is read-only: it is fixed by the path.
func DescribeStudy(tx *gorm.DB) (map[string]FieldInfo, error) {
	bodyParts, err := models.BodyPartNames(tx)
	if err != nil {
		return nil, err
	}
	types, err := models.StudyTypeNames(tx)
	if err != nil {
		return nil, err
	}

	urgencies := make([]string, 0, len(models.Urgencies))
	urgencyChoices := make([]Choice, 0, len(models.Urgencies))
	for _, u := range models.Urgencies {
		urgencies = append(urgencies, string(u))
		urgencyChoices = append(urgencyChoices, Choice{Value: string(u), DisplayName: u.Label()})
	}

	return map[string]FieldInfo{
		"id": {Type: "integer", ReadOnly: true, Label: "ID"},
		"urgency_level": {
			Type: "choice", Required: true, Label: "Urgency level",
			HelpText: helpText(urgencies), Choices: urgencyChoices,
		},
		"body_part": {
			Type: "choice", Required: true, Label: "Body part",
			HelpText: helpText(bodyParts), Choices: nameChoices(bodyParts),
		},
		"description": {Type: "string", Required: true, Label: "Description"},
		"type": {
			Type: "choice", Required: true, Label: "Type",
			HelpText: helpText(types), Choices: nameChoices(types),
		},
		"patient": {Type: "field", ReadOnly: true, Label: "Patient"},
	}, nil
}

// DescribePatient lists the patient fields.
func DescribePatient() map[string]FieldInfo {
	return map[string]FieldInfo{
		"id":         {Type: "integer", ReadOnly: true, Label: "ID"},
		"first_name": {Type: "string", Required: true, Label: "First name", MaxLength: 50},
		"last_name":  {Type: "string", Required: true, Label: "Last name", MaxLength: 50},
		"birth_date": {Type: "date", Required: true, Label: "Birth date", HelpText: "iso format"},
		"email":      {Type: "email", Required: true, Label: "Email", MaxLength: 254},
	}
}

func nameChoices(names []string) []Choice {
	choices := make([]Choice, 0, len(names))
	for _, n := range names {
		choices = append(choices, Choice{Value: n, DisplayName: n})
	}
	return choices
}

func helpText(values []string) string {
	return "One of: " + strings.Join(values, ", ")
}

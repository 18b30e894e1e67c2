package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"patient-studies-server/internal/forms"
	"patient-studies-server/internal/models"
	"patient-studies-server/internal/utils"
)

const patientNotFound = "Patient not found"

// PatientHandler handles patient related requests.
type PatientHandler struct {
	DB *gorm.DB
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{DB: db}
}

// ListPatients returns every patient.
func (h *PatientHandler) ListPatients(c *gin.Context) {
	var patients []models.Patient
	if err := h.DB.WithContext(c.Request.Context()).Order("id").Find(&patients).Error; err != nil {
		respondError(c, err, patientNotFound)
		return
	}
	utils.Success(c, "Patients fetched successfully", patients)
}

// CreatePatient handles creating a new patient.
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req forms.PatientInput
	errs, ok := bindBody(c, &req)
	if !ok {
		return
	}

	var patient models.Patient
	errs.Merge(req.Apply(&patient, forms.Create))
	if len(errs) > 0 {
		utils.ValidationFailed(c, errs)
		return
	}

	if err := h.DB.WithContext(c.Request.Context()).Omit(clause.Associations).Create(&patient).Error; err != nil {
		respondError(c, err, patientNotFound)
		return
	}
	utils.Created(c, "Patient created successfully", patient)
}

// GetPatient returns a single patient.
func (h *PatientHandler) GetPatient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var patient models.Patient
	if err := h.DB.WithContext(c.Request.Context()).First(&patient, id).Error; err != nil {
		respondError(c, err, patientNotFound)
		return
	}
	utils.Success(c, "Patient fetched successfully", patient)
}

// ReplacePatient handles PUT: every field must be supplied.
func (h *PatientHandler) ReplacePatient(c *gin.Context) {
	h.updatePatient(c, forms.Replace)
}

// PatchPatient handles PATCH: any subset of fields.
func (h *PatientHandler) PatchPatient(c *gin.Context) {
	h.updatePatient(c, forms.Partial)
}

func (h *PatientHandler) updatePatient(c *gin.Context, mode forms.Mode) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req forms.PatientInput
	errs, ok := bindBody(c, &req)
	if !ok {
		return
	}

	var patient models.Patient
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&patient, id).Error; err != nil {
			return err
		}
		errs.Merge(req.Apply(&patient, mode))
		if err := errs.Err(); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&patient).Error
	})
	if err != nil {
		respondError(c, err, patientNotFound)
		return
	}
	utils.Success(c, "Patient updated successfully", patient)
}

// DeletePatient removes a patient that has no studies.
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := models.DeletePatient(h.DB.WithContext(c.Request.Context()), id); err != nil {
		respondError(c, err, patientNotFound)
		return
	}
	utils.NoContent(c)
}

// DescribePatients answers OPTIONS on the patient collection.
func (h *PatientHandler) DescribePatients(c *gin.Context) {
	md := forms.NewMetadata("Patient List", "", forms.DescribePatient(), http.MethodPost)
	utils.Success(c, "Patient metadata", md)
}

// DescribePatient answers OPTIONS on a single patient.
func (h *PatientHandler) DescribePatient(c *gin.Context) {
	md := forms.NewMetadata("Patient Detail", "", forms.DescribePatient(), http.MethodPut)
	utils.Success(c, "Patient metadata", md)
}

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

const studyNotFound = "Study not found"

// StudyHandler handles studies nested under a patient. Every lookup is
// scoped to the patient in the path.
type StudyHandler struct {
	DB *gorm.DB
}

// NewStudyHandler creates a new StudyHandler.
func NewStudyHandler(db *gorm.DB) *StudyHandler {
	return &StudyHandler{DB: db}
}

func patientStudies(tx *gorm.DB, patientID uint) *gorm.DB {
	return tx.Preload("BodyPart").Preload("Type").Where("patient_id = ?", patientID)
}

func requirePatient(tx *gorm.DB, patientID uint) error {
	return tx.Select("id").Take(&models.Patient{}, patientID).Error
}

// ListStudies returns the studies of one patient.
func (h *StudyHandler) ListStudies(c *gin.Context) {
	patientID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var studies []models.Study
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := requirePatient(tx, patientID); err != nil {
			return err
		}
		return patientStudies(tx, patientID).Order("id").Find(&studies).Error
	})
	if err != nil {
		respondError(c, err, patientNotFound)
		return
	}
	utils.Success(c, "Studies fetched successfully", forms.NewStudyViews(studies))
}

// CreateStudy creates a study owned by the patient in the path.
func (h *StudyHandler) CreateStudy(c *gin.Context) {
	patientID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req forms.StudyInput
	errs, ok := bindBody(c, &req)
	if !ok {
		return
	}

	var study models.Study
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := requirePatient(tx, patientID); err != nil {
			return err
		}
		fieldErrs, err := req.Apply(tx, &study, forms.Create)
		if err != nil {
			return err
		}
		errs.Merge(fieldErrs)
		if err := errs.Err(); err != nil {
			return err
		}
		study.PatientID = patientID
		return tx.Omit(clause.Associations).Create(&study).Error
	})
	if err != nil {
		respondError(c, err, patientNotFound)
		return
	}
	utils.Created(c, "Study created successfully", forms.NewStudyView(study))
}

// GetStudy returns one study of the patient.
func (h *StudyHandler) GetStudy(c *gin.Context) {
	patientID, ok := pathID(c, "id")
	if !ok {
		return
	}
	studyID, ok := pathID(c, "studyId")
	if !ok {
		return
	}

	var study models.Study
	if err := patientStudies(h.DB.WithContext(c.Request.Context()), patientID).First(&study, studyID).Error; err != nil {
		respondError(c, err, studyNotFound)
		return
	}
	utils.Success(c, "Study fetched successfully", forms.NewStudyView(study))
}

// ReplaceStudy handles PUT. The owning patient cannot be changed.
func (h *StudyHandler) ReplaceStudy(c *gin.Context) {
	h.updateStudy(c, forms.Replace)
}

// PatchStudy handles PATCH. The owning patient cannot be changed.
func (h *StudyHandler) PatchStudy(c *gin.Context) {
	h.updateStudy(c, forms.Partial)
}

func (h *StudyHandler) updateStudy(c *gin.Context, mode forms.Mode) {
	patientID, ok := pathID(c, "id")
	if !ok {
		return
	}
	studyID, ok := pathID(c, "studyId")
	if !ok {
		return
	}
	var req forms.StudyInput
	errs, ok := bindBody(c, &req)
	if !ok {
		return
	}

	var study models.Study
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := patientStudies(tx, patientID).First(&study, studyID).Error; err != nil {
			return err
		}
		fieldErrs, err := req.Apply(tx, &study, mode)
		if err != nil {
			return err
		}
		errs.Merge(fieldErrs)
		if err := errs.Err(); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(&study).Error
	})
	if err != nil {
		respondError(c, err, studyNotFound)
		return
	}
	utils.Success(c, "Study updated successfully", forms.NewStudyView(study))
}

// DeleteStudy removes one study of the patient.
func (h *StudyHandler) DeleteStudy(c *gin.Context) {
	patientID, ok := pathID(c, "id")
	if !ok {
		return
	}
	studyID, ok := pathID(c, "studyId")
	if !ok {
		return
	}

	res := h.DB.WithContext(c.Request.Context()).Where("patient_id = ?", patientID).Delete(&models.Study{}, studyID)
	if res.Error != nil {
		respondError(c, res.Error, studyNotFound)
		return
	}
	if res.RowsAffected == 0 {
		utils.NotFound(c, studyNotFound)
		return
	}
	utils.NoContent(c)
}

// DescribeStudies answers OPTIONS on the study collection with the
// catalogs as they are now.
func (h *StudyHandler) DescribeStudies(c *gin.Context) {
	h.describe(c, "Study List", http.MethodPost)
}

// DescribeStudy answers OPTIONS on a single study.
func (h *StudyHandler) DescribeStudy(c *gin.Context) {
	h.describe(c, "Study Detail", http.MethodPut)
}

func (h *StudyHandler) describe(c *gin.Context, name, method string) {
	var fields map[string]forms.FieldInfo
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		var err error
		fields, err = forms.DescribeStudy(tx)
		return err
	})
	if err != nil {
		respondError(c, err, studyNotFound)
		return
	}
	utils.Success(c, "Study metadata", forms.NewMetadata(name, "Studies ordered for a patient.", fields, method))
}

package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"patient-studies-server/internal/models"
	"patient-studies-server/internal/utils"
)

// CatalogHandler manages the body part and type reference data.
type CatalogHandler struct {
	DB *gorm.DB
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(db *gorm.DB) *CatalogHandler {
	return &CatalogHandler{DB: db}
}

// CatalogEntryRequest is the body for creating a catalog entry.
type CatalogEntryRequest struct {
	Name string `json:"name" binding:"required,max=50"`
}

// bindName binds the request and returns the trimmed name. Whitespace-only
// names are rejected as blank.
func bindName(c *gin.Context) (string, bool) {
	var req CatalogEntryRequest
	if !utils.BindAndValidate(c, &req) {
		return "", false
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		errs := utils.FieldErrors{}
		errs.Add("name", utils.MsgBlank)
		utils.ValidationFailed(c, errs)
		return "", false
	}
	return name, true
}

// ListBodyParts returns the body part catalog ordered by name.
func (h *CatalogHandler) ListBodyParts(c *gin.Context) {
	var parts []models.BodyPart
	if err := h.DB.WithContext(c.Request.Context()).Order("name").Find(&parts).Error; err != nil {
		respondError(c, err, "Body part not found")
		return
	}
	utils.Success(c, "Body parts fetched successfully", parts)
}

// CreateBodyPart adds a body part.
func (h *CatalogHandler) CreateBodyPart(c *gin.Context) {
	name, ok := bindName(c)
	if !ok {
		return
	}

	part := models.BodyPart{Name: name}
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := uniqueName(tx, &models.BodyPart{}, name, "body part"); err != nil {
			return err
		}
		return tx.Create(&part).Error
	})
	if err != nil {
		respondError(c, err, "Body part not found")
		return
	}
	utils.Created(c, "Body part created successfully", part)
}

// DeleteBodyPart removes a body part no study uses.
func (h *CatalogHandler) DeleteBodyPart(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := models.DeleteBodyPart(h.DB.WithContext(c.Request.Context()), id); err != nil {
		respondError(c, err, "Body part not found")
		return
	}
	utils.NoContent(c)
}

// ListTypes returns the type catalog ordered by name.
func (h *CatalogHandler) ListTypes(c *gin.Context) {
	var types []models.StudyType
	if err := h.DB.WithContext(c.Request.Context()).Order("name").Find(&types).Error; err != nil {
		respondError(c, err, "Type not found")
		return
	}
	utils.Success(c, "Types fetched successfully", types)
}

// CreateType adds a type.
func (h *CatalogHandler) CreateType(c *gin.Context) {
	name, ok := bindName(c)
	if !ok {
		return
	}

	typ := models.StudyType{Name: name}
	err := h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := uniqueName(tx, &models.StudyType{}, name, "type"); err != nil {
			return err
		}
		return tx.Create(&typ).Error
	})
	if err != nil {
		respondError(c, err, "Type not found")
		return
	}
	utils.Created(c, "Type created successfully", typ)
}

// DeleteType removes a type no study uses.
func (h *CatalogHandler) DeleteType(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := models.DeleteStudyType(h.DB.WithContext(c.Request.Context()), id); err != nil {
		respondError(c, err, "Type not found")
		return
	}
	utils.NoContent(c)
}

func uniqueName(tx *gorm.DB, model any, name, label string) error {
	var count int64
	if err := tx.Model(model).Where("name = ?", name).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		errs := utils.FieldErrors{}
		errs.Add("name", label+" with this name already exists.")
		return errs
	}
	return nil
}

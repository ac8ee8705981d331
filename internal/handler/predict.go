package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"lead-scoring-service/internal/domain"
	"lead-scoring-service/internal/dto"
)

func (h *Handler) Predict(c *gin.Context) {
	var lead domain.LeadProfile
	if err := c.ShouldBindJSON(&lead); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s: %s", domain.ErrInvalidLead, err)})
		return
	}
	if err := validateLead(lead); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	prediction, err := h.predictor.Predict(c.Request.Context(), lead)
	if err != nil {
		log.WithError(err).Warn("prediction failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToPredictResponse(prediction))
}

func validateLead(lead domain.LeadProfile) error {
	if lead.Age <= 0 {
		return fmt.Errorf("%w: age must be positive", domain.ErrInvalidLead)
	}
	if lead.Gender != "Male" && lead.Gender != "Female" {
		return fmt.Errorf("%w: gender must be Male or Female", domain.ErrInvalidLead)
	}
	if lead.VehicleDamage != "Yes" && lead.VehicleDamage != "No" {
		return fmt.Errorf("%w: vehicle_damage must be Yes or No", domain.ErrInvalidLead)
	}
	if lead.VehicleAge12Year+lead.VehicleAgeLt1Year+lead.VehicleAgeGt2Years != 1 {
		return fmt.Errorf("%w: exactly one vehicle age indicator must be set", domain.ErrInvalidLead)
	}
	return nil
}

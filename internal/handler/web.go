package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"lead-scoring-service/internal/domain"
	"lead-scoring-service/internal/dto"
)

// Form renders the lead scoring form.
func (h *Handler) Form(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{})
}

// FormPredict scores the submitted form and re-renders it with the
// verdict text.
func (h *Handler) FormPredict(c *gin.Context) {
	lead := leadFromForm(c)
	if err := validateLead(lead); err != nil {
		c.HTML(http.StatusBadRequest, "index.html", gin.H{"error": err.Error()})
		return
	}

	prediction, err := h.predictor.Predict(c.Request.Context(), lead)
	if err != nil {
		log.WithError(err).Warn("form prediction failed")
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrModelNotFound) {
			status = http.StatusNotFound
		}
		c.HTML(status, "index.html", gin.H{"error": err.Error()})
		return
	}

	resp := dto.ToPredictResponse(prediction)
	c.HTML(http.StatusOK, "index.html", gin.H{"context": resp.Label})
}

func leadFromForm(c *gin.Context) domain.LeadProfile {
	lead := domain.LeadProfile{
		Age:                formFloat(c, "Age"),
		Gender:             c.PostForm("Gender"),
		Vintage:            formFloat(c, "Vintage"),
		RegionCode:         formFloat(c, "Region_Code"),
		AnnualPremium:      formFloat(c, "Annual_Premium"),
		VehicleDamage:      c.PostForm("Vehicle_Damage"),
		DrivingLicense:     formInt(c, "Driving_License"),
		PreviouslyInsured:  formInt(c, "Previously_Insured"),
		PolicySalesChannel: formFloat(c, "Policy_Sales_Channel"),
	}

	switch c.PostForm("Vehicle_Age") {
	case "< 1 Year":
		lead.VehicleAgeLt1Year = 1
	case "1-2 Year":
		lead.VehicleAge12Year = 1
	case "> 2 Years":
		lead.VehicleAgeGt2Years = 1
	}
	return lead
}

func formFloat(c *gin.Context, key string) float64 {
	v, _ := strconv.ParseFloat(c.PostForm(key), 64)
	return v
}

func formInt(c *gin.Context, key string) int {
	v, _ := strconv.Atoi(c.PostForm(key))
	return v
}

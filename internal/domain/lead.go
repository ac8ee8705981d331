package domain

// LeadProfile is one insurance lead to score: a customer profile as
// submitted through the web form or the JSON API. Vehicle age arrives as
// three indicator fields because the trained model consumes the one-hot
// encoded columns directly.
type LeadProfile struct {
	Age                float64 `json:"age"`
	Gender             string  `json:"gender"`
	Vintage            float64 `json:"vintage"`
	RegionCode         float64 `json:"region_code"`
	AnnualPremium      float64 `json:"annual_premium"`
	VehicleDamage      string  `json:"vehicle_damage"`
	DrivingLicense     int     `json:"driving_license"`
	PreviouslyInsured  int     `json:"previously_insured"`
	PolicySalesChannel float64 `json:"policy_sales_channel"`
	VehicleAge12Year   int     `json:"vehicle_age_1_2_year"`
	VehicleAgeLt1Year  int     `json:"vehicle_age_lt_1_year"`
	VehicleAgeGt2Years int     `json:"vehicle_age_gt_2_years"`
}

// Features encodes the profile into the column space the classifier was
// trained on. Gender and vehicle damage use the same codes as the
// training transform (Female=1, damage Yes=1).
func (p LeadProfile) Features() map[string]float64 {
	gender := 0.0
	if p.Gender == "Female" {
		gender = 1
	}
	damage := 0.0
	if p.VehicleDamage == "Yes" {
		damage = 1
	}

	return map[string]float64{
		"Age":                    p.Age,
		"Gender":                 gender,
		"Vintage":                p.Vintage,
		"Region_Code":            p.RegionCode,
		"Annual_Premium":         p.AnnualPremium,
		"Vehicle_Damage":         damage,
		"Driving_License":        float64(p.DrivingLicense),
		"Previously_Insured":     float64(p.PreviouslyInsured),
		"Policy_Sales_Channel":   p.PolicySalesChannel,
		"Vehicle_Age_1_2_Year":   float64(p.VehicleAge12Year),
		"Vehicle_Age_lt_1_Year":  float64(p.VehicleAgeLt1Year),
		"Vehicle_Age_gt_2_Years": float64(p.VehicleAgeGt2Years),
	}
}

// Prediction is the scored outcome for one lead.
type Prediction struct {
	Response    int     `json:"response"`
	Probability float64 `json:"probability"`
}

package domain

// Band is the presentation color attached to a status label.
type Band string

const (
	BandRed    Band = "red"
	BandYellow Band = "yellow"
	BandGreen  Band = "green"
	BandBlue   Band = "blue"
	BandGray   Band = "gray"
)

// Classification pairs a status label with its presentation band.
type Classification struct {
	Label string `json:"label"`
	Band  Band   `json:"band"`
}

// Status labels.
const (
	PHAcidic   = "Acidic"
	PHOptimal  = "Optimal"
	PHAlkaline = "Alkaline"

	NutrientCritical     = "critical"
	NutrientBelowOptimal = "below-optimal"
	NutrientGood         = "good"

	HealthExcellent = "Excellent"
	HealthGood      = "Good"
	HealthFair      = "Fair"
	HealthModerate  = "Moderate"
	HealthPoor      = "Poor"

	TemperatureAboveAverage = "Above Average"
	TemperatureNormal       = "Normal Range"
	HumidityHigh            = "High"
	HumidityModerate        = "Moderate"

	IrrigationCompleted  = "Completed"
	IrrigationScheduled  = "Scheduled"
	IrrigationInProgress = "In Progress"
)

// ClassifyPH bands soil pH. Both 5.5 and 7.5 are optimal.
func ClassifyPH(ph float64) Classification {
	switch {
	case ph < 5.5:
		return Classification{Label: PHAcidic, Band: BandRed}
	case ph > 7.5:
		return Classification{Label: PHAlkaline, Band: BandBlue}
	default:
		return Classification{Label: PHOptimal, Band: BandGreen}
	}
}

// PHAdvice returns the amendment advice for a soil pH.
func PHAdvice(ph float64) string {
	switch ClassifyPH(ph).Label {
	case PHAcidic:
		return "Your soil is acidic. Consider adding agricultural lime to raise pH for most crops."
	case PHAlkaline:
		return "Your soil is alkaline. Consider adding sulfur or organic matter to lower pH for most crops."
	default:
		return "Your soil pH is in optimal range for most crops."
	}
}

// ClassifyNitrogen bands available nitrogen in kg/ha: <30 critical, <60 below optimal.
func ClassifyNitrogen(kgPerHa float64) Classification {
	return classifyNutrient(kgPerHa, 30, 60)
}

// ClassifyPhosphorus bands available phosphorus in kg/ha: <20 critical, <40 below optimal.
func ClassifyPhosphorus(kgPerHa float64) Classification {
	return classifyNutrient(kgPerHa, 20, 40)
}

// ClassifyPotassium bands available potassium in kg/ha: <100 critical, <200 below optimal.
func ClassifyPotassium(kgPerHa float64) Classification {
	return classifyNutrient(kgPerHa, 100, 200)
}

func classifyNutrient(v, critical, optimal float64) Classification {
	switch {
	case v < critical:
		return Classification{Label: NutrientCritical, Band: BandRed}
	case v < optimal:
		return Classification{Label: NutrientBelowOptimal, Band: BandYellow}
	default:
		return Classification{Label: NutrientGood, Band: BandGreen}
	}
}

// NutrientStatus is the combined N/P/K verdict shown on the soil card.
type NutrientStatus struct {
	Classification
	Message string `json:"message"`
}

// OverallNutrientStatus reports the worst band across nitrogen, phosphorus
// and potassium.
func OverallNutrientStatus(nitrogen, phosphorus, potassium float64) NutrientStatus {
	worst := NutrientGood
	for _, c := range []Classification{
		ClassifyNitrogen(nitrogen),
		ClassifyPhosphorus(phosphorus),
		ClassifyPotassium(potassium),
	} {
		if nutrientRank(c.Label) < nutrientRank(worst) {
			worst = c.Label
		}
	}

	switch worst {
	case NutrientCritical:
		return NutrientStatus{
			Classification: Classification{Label: NutrientCritical, Band: BandRed},
			Message:        "Some nutrients are critically low. Check recommendations for fertilizer application.",
		}
	case NutrientBelowOptimal:
		return NutrientStatus{
			Classification: Classification{Label: NutrientBelowOptimal, Band: BandYellow},
			Message:        "Nutrient levels are below optimal. Consider supplementing for best crop yields.",
		}
	default:
		return NutrientStatus{
			Classification: Classification{Label: NutrientGood, Band: BandGreen},
			Message:        "Nutrient levels are in good range for most crops.",
		}
	}
}

func nutrientRank(label string) int {
	switch label {
	case NutrientCritical:
		return 0
	case NutrientBelowOptimal:
		return 1
	default:
		return 2
	}
}

// ClassifyNDVI grades crop health from an NDVI reading.
func ClassifyNDVI(ndvi float64) Classification {
	switch {
	case ndvi > 0.7:
		return Classification{Label: HealthExcellent, Band: BandGreen}
	case ndvi > 0.5:
		return Classification{Label: HealthGood, Band: BandGreen}
	default:
		return Classification{Label: HealthFair, Band: BandYellow}
	}
}

// ClassifyFieldSection grades a field section from its vegetation index value.
func ClassifyFieldSection(value float64) Classification {
	switch {
	case value >= 0.75:
		return Classification{Label: HealthExcellent, Band: FieldStatusBand(HealthExcellent)}
	case value >= 0.65:
		return Classification{Label: HealthGood, Band: FieldStatusBand(HealthGood)}
	case value >= 0.5:
		return Classification{Label: HealthModerate, Band: FieldStatusBand(HealthModerate)}
	default:
		return Classification{Label: HealthPoor, Band: FieldStatusBand(HealthPoor)}
	}
}

// FieldStatusBand maps a health label to its band; unknown labels are gray.
func FieldStatusBand(label string) Band {
	switch label {
	case HealthExcellent, HealthGood:
		return BandGreen
	case HealthModerate:
		return BandYellow
	case HealthPoor:
		return BandRed
	default:
		return BandGray
	}
}

// ClassifyTemperature flags a current temperature (°C) above 30 as above average.
func ClassifyTemperature(celsius float64) Classification {
	if celsius > 30 {
		return Classification{Label: TemperatureAboveAverage, Band: BandRed}
	}
	return Classification{Label: TemperatureNormal, Band: BandBlue}
}

// ClassifyHumidity flags relative humidity above 70% as high.
func ClassifyHumidity(percent float64) Classification {
	if percent > 70 {
		return Classification{Label: HumidityHigh, Band: BandBlue}
	}
	return Classification{Label: HumidityModerate, Band: BandGreen}
}

// IrrigationStatusBand maps an irrigation event status to its band.
func IrrigationStatusBand(status string) Band {
	switch status {
	case IrrigationCompleted:
		return BandGreen
	case IrrigationScheduled:
		return BandBlue
	case IrrigationInProgress:
		return BandYellow
	default:
		return BandGray
	}
}

package climate

import (
	"github.com/couchcryptid/field-telemetry-service/internal/domain"
)

// Series bounds per measurement.
var (
	temperatureSpec  = domain.SeriesSpec{Min: 25, Max: 35, Precision: 1}
	humiditySpec     = domain.SeriesSpec{Min: 50, Max: 85, Precision: 1}
	rainfallSpec     = domain.SeriesSpec{Min: 0, Max: 25, Precision: 1}
	soilMoistureSpec = domain.SeriesSpec{Min: 30, Max: 70, Precision: 1}
	ndviSpec         = domain.SeriesSpec{Min: 0.4, Max: 0.85, Trend: true, Precision: 2}
	eviSpec          = domain.SeriesSpec{Min: 0.2, Max: 0.7, Trend: true, Precision: 2}
	gciSpec          = domain.SeriesSpec{Min: 1, Max: 3, Precision: 2}
)

// sectionBaselines are the vegetation index floors of each field section;
// a section reads baseline + U(0, sectionSpread).
var sectionBaselines = []struct {
	name     string
	baseline float64
}{
	{"North Section", 0.75},
	{"Central Section", 0.65},
	{"South Section", 0.55},
}

const sectionSpread = 0.1

// buildWeather synthesizes temperature, humidity and rainfall over the range.
func buildWeather(rng domain.Rand, req domain.FetchRequest) (domain.WeatherBundle, error) {
	r, err := req.DateRange.Parse()
	if err != nil {
		return domain.WeatherBundle{}, err
	}
	n := r.DayCount()

	b := domain.WeatherBundle{
		Temperature: domain.GenerateSeries(rng, n, temperatureSpec, r.End),
		Humidity:    domain.GenerateSeries(rng, n, humiditySpec, r.End),
		Rainfall:    domain.GenerateSeries(rng, n, rainfallSpec, r.End),
	}
	b.Summary = summarizeWeather(b)
	return b, nil
}

func summarizeWeather(b domain.WeatherBundle) domain.WeatherSummary {
	s := domain.WeatherSummary{PeriodRainfall: domain.Round(b.Rainfall.Sum(), 1)}
	if p, ok := b.Temperature.Latest(); ok {
		c := domain.ClassifyTemperature(p.Value)
		s.CurrentTemperature = &p.Value
		s.TemperatureStatus = &c
	}
	if p, ok := b.Humidity.Latest(); ok {
		c := domain.ClassifyHumidity(p.Value)
		s.CurrentHumidity = &p.Value
		s.HumidityStatus = &c
	}
	return s
}

// buildVegetation synthesizes NDVI, EVI and GCI plus per-section health.
// Section status is derived from each section's value.
func buildVegetation(rng domain.Rand, req domain.FetchRequest) (domain.VegetationBundle, error) {
	r, err := req.DateRange.Parse()
	if err != nil {
		return domain.VegetationBundle{}, err
	}
	n := r.DayCount()

	b := domain.VegetationBundle{
		NDVI:          domain.GenerateSeries(rng, n, ndviSpec, r.End),
		EVI:           domain.GenerateSeries(rng, n, eviSpec, r.End),
		GCI:           domain.GenerateSeries(rng, n, gciSpec, r.End),
		FieldSections: make([]domain.FieldSection, 0, len(sectionBaselines)),
	}
	for _, sec := range sectionBaselines {
		v := domain.Uniform(rng, sec.baseline, sectionSpread, 2)
		b.FieldSections = append(b.FieldSections, domain.FieldSection{
			Name:   sec.name,
			Value:  v,
			Status: domain.ClassifyFieldSection(v),
		})
	}
	if p, ok := b.NDVI.Latest(); ok {
		h := domain.ClassifyNDVI(p.Value)
		b.Health = &h
	}
	return b, nil
}

// buildSoil draws a soil test result. The range is validated but does not
// shape the result.
func buildSoil(rng domain.Rand, req domain.FetchRequest) (domain.SoilProfile, error) {
	if _, err := req.DateRange.Parse(); err != nil {
		return domain.SoilProfile{}, err
	}

	p := domain.SoilProfile{
		SoilType:      "Clay Loam",
		PH:            domain.Uniform(rng, 6.5, 1.0, 1),
		Nitrogen:      domain.Uniform(rng, 40, 20, 1),
		Phosphorus:    domain.Uniform(rng, 25, 15, 1),
		Potassium:     domain.Uniform(rng, 150, 50, 1),
		OrganicMatter: domain.Uniform(rng, 2.0, 1.5, 1),
	}
	p.Recommendations = []domain.SoilRecommendation{
		{
			Nutrient:       "Nitrogen",
			CurrentLevel:   domain.ClassifyNitrogen(p.Nitrogen).Label,
			Recommendation: "Apply 40kg/ha before next planting",
		},
		{
			Nutrient:       "Phosphorus",
			CurrentLevel:   domain.ClassifyPhosphorus(p.Phosphorus).Label,
			Recommendation: "Apply 30kg/ha of phosphatic fertilizer",
		},
	}
	p.PHStatus = domain.ClassifyPH(p.PH)
	p.PHAdvice = domain.PHAdvice(p.PH)
	p.NutrientStatus = domain.OverallNutrientStatus(p.Nitrogen, p.Phosphorus, p.Potassium)
	return p, nil
}

// buildWater synthesizes soil moisture and attaches the irrigation log and advisories.
func buildWater(rng domain.Rand, req domain.FetchRequest) (domain.WaterBundle, error) {
	r, err := req.DateRange.Parse()
	if err != nil {
		return domain.WaterBundle{}, err
	}

	events := []domain.IrrigationEvent{
		{Date: domain.NewDate(2025, 8, 14), Amount: 12000, Duration: "1h 45m", FieldSection: "North Field", Status: domain.IrrigationCompleted},
		{Date: domain.NewDate(2025, 8, 11), Amount: 15000, Duration: "2h 15m", FieldSection: "All Sections", Status: domain.IrrigationCompleted},
		{Date: domain.NewDate(2025, 8, 8), Amount: 8500, Duration: "1h 10m", FieldSection: "South Field", Status: domain.IrrigationCompleted},
	}
	for i := range events {
		events[i].Band = domain.IrrigationStatusBand(events[i].Status)
	}

	return domain.WaterBundle{
		SoilMoisture:     domain.GenerateSeries(rng, r.DayCount(), soilMoistureSpec, r.End),
		IrrigationEvents: events,
		Recommendations: []domain.WaterRecommendation{
			{
				Type:        "schedule",
				Title:       "Next Irrigation Schedule",
				Description: "Based on soil moisture trends and weather forecast, schedule next irrigation for August 17, 2025.",
				Priority:    domain.PriorityNormal,
			},
			{
				Type:        "alert",
				Title:       "Water Conservation Alert",
				Description: "Lower North field section shows higher than average water usage. Consider adjusting irrigation in this area.",
				Priority:    domain.PriorityWarning,
			},
		},
	}, nil
}

// buildRainfall synthesizes daily rainfall alongside the seasonal monsoon figures.
func buildRainfall(rng domain.Rand, req domain.FetchRequest) (domain.RainfallBundle, error) {
	r, err := req.DateRange.Parse()
	if err != nil {
		return domain.RainfallBundle{}, err
	}

	return domain.RainfallBundle{
		DailyRainfall:     domain.GenerateSeries(rng, r.DayCount(), rainfallSpec, r.End),
		MonsoonProgress:   0.65,
		SeasonalTotal:     450,
		AverageComparison: 0.9,
		Forecast: domain.RainForecast{
			NextRain:    domain.NewDate(2025, 8, 18),
			Intensity:   "Moderate",
			Probability: 0.75,
		},
	}, nil
}

// buildHazard draws a fire risk index in [0.2, 0.6].
func buildHazard(rng domain.Rand, req domain.FetchRequest) (domain.HazardBundle, error) {
	if _, err := req.DateRange.Parse(); err != nil {
		return domain.HazardBundle{}, err
	}

	return domain.HazardBundle{
		FireRiskIndex: domain.Uniform(rng, 0.2, 0.4, 2),
		Alerts: []domain.HazardAlert{
			{
				Type:        "information",
				Title:       "Low Fire Risk",
				Description: "Current fire risk is low due to recent rainfall and moderate temperatures.",
			},
		},
		HistoricalEvents: []domain.HazardAlert{},
	}, nil
}

// pointCount reports how many series points a bundle carries.
func pointCount(v any) int {
	switch b := v.(type) {
	case domain.WeatherBundle:
		return len(b.Temperature) + len(b.Humidity) + len(b.Rainfall)
	case domain.VegetationBundle:
		return len(b.NDVI) + len(b.EVI) + len(b.GCI)
	case domain.WaterBundle:
		return len(b.SoilMoisture)
	case domain.RainfallBundle:
		return len(b.DailyRainfall)
	default:
		return 0
	}
}

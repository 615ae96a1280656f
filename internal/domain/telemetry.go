package domain

import "time"

// Bundle names, used as metric labels, HTTP path segments and error context.
const (
	BundleWeather    = "weather"
	BundleVegetation = "vegetation"
	BundleSoil       = "soil"
	BundleWater      = "water"
	BundleRainfall   = "rainfall"
	BundleHazard     = "hazard"
)

// Bundles lists every bundle name in display order.
var Bundles = []string{
	BundleWeather,
	BundleVegetation,
	BundleSoil,
	BundleWater,
	BundleRainfall,
	BundleHazard,
}

// Field is a monitored farm plot as shown in the dashboard's field picker.
type Field struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// DateRangeInput is the wire form of a date range: two YYYY-MM-DD strings.
type DateRangeInput struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Parse converts the input into a validated DateRange.
func (in DateRangeInput) Parse() (DateRange, error) {
	return ParseDateRange(in.StartDate, in.EndDate)
}

// InputOf formats a DateRange back into its wire form.
func InputOf(r DateRange) DateRangeInput {
	return DateRangeInput{StartDate: r.Start.String(), EndDate: r.End.String()}
}

// FetchRequest carries the caller's selection explicitly into every fetch.
// The date range stays unparsed so that a malformed range fails inside the
// bundle build, like any other construction step.
type FetchRequest struct {
	FieldID   string         `json:"fieldId"`
	Location  string         `json:"location"`
	DateRange DateRangeInput `json:"dateRange"`
}

// TimeSeriesPoint is one daily sample.
type TimeSeriesPoint struct {
	Date  Date    `json:"date"`
	Value float64 `json:"value"`
}

// Series is an ordered, ascending sequence of daily samples.
type Series []TimeSeriesPoint

// Latest returns the most recent point, if any.
func (s Series) Latest() (TimeSeriesPoint, bool) {
	if len(s) == 0 {
		return TimeSeriesPoint{}, false
	}
	return s[len(s)-1], true
}

// Sum adds every value in the series.
func (s Series) Sum() float64 {
	var total float64
	for _, p := range s {
		total += p.Value
	}
	return total
}

// WeatherSummary holds the headline figures of a weather bundle.
type WeatherSummary struct {
	CurrentTemperature *float64        `json:"currentTemperature,omitempty"`
	TemperatureStatus  *Classification `json:"temperatureStatus,omitempty"`
	CurrentHumidity    *float64        `json:"currentHumidity,omitempty"`
	HumidityStatus     *Classification `json:"humidityStatus,omitempty"`
	PeriodRainfall     float64         `json:"periodRainfall"`
}

// WeatherBundle holds temperature (°C), humidity (%) and rainfall (mm) series
// over the same date range.
type WeatherBundle struct {
	Temperature Series         `json:"temperature"`
	Humidity    Series         `json:"humidity"`
	Rainfall    Series         `json:"rainfall"`
	Summary     WeatherSummary `json:"summary"`
}

// FieldSection is the vegetation health of one part of a field.
type FieldSection struct {
	Name   string         `json:"name"`
	Value  float64        `json:"value"`
	Status Classification `json:"status"`
}

// VegetationBundle holds the vegetation index series and per-section health.
type VegetationBundle struct {
	NDVI          Series          `json:"ndvi"`
	EVI           Series          `json:"evi"`
	GCI           Series          `json:"gci"`
	FieldSections []FieldSection  `json:"fieldSections"`
	Health        *Classification `json:"health,omitempty"` // from the latest NDVI point
}

// SoilRecommendation is a fertilizer suggestion for one nutrient.
type SoilRecommendation struct {
	Nutrient       string `json:"nutrient"`
	CurrentLevel   string `json:"current"`
	Recommendation string `json:"recommendation"`
}

// SoilProfile is a single-shot soil test result. Nutrients are in kg/ha,
// organic matter in percent.
type SoilProfile struct {
	SoilType        string               `json:"soilType"`
	PH              float64              `json:"ph"`
	Nitrogen        float64              `json:"nitrogen"`
	Phosphorus      float64              `json:"phosphorus"`
	Potassium       float64              `json:"potassium"`
	OrganicMatter   float64              `json:"organicMatter"`
	Recommendations []SoilRecommendation `json:"recommendations"`

	PHStatus       Classification `json:"phStatus"`
	PHAdvice       string         `json:"phAdvice"`
	NutrientStatus NutrientStatus `json:"nutrientStatus"`
}

// IrrigationEvent is one historical irrigation run. Amount is in liters.
type IrrigationEvent struct {
	Date         Date   `json:"date"`
	Amount       int    `json:"amount"`
	Duration     string `json:"duration"`
	FieldSection string `json:"fieldSection"`
	Status       string `json:"status"`
	Band         Band   `json:"band"`
}

// Water recommendation priorities.
const (
	PriorityNormal  = "normal"
	PriorityWarning = "warning"
)

// WaterRecommendation is an irrigation advisory card.
type WaterRecommendation struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

// WaterBundle holds soil moisture (%), irrigation history and advisories.
type WaterBundle struct {
	SoilMoisture     Series                `json:"soilMoisture"`
	IrrigationEvents []IrrigationEvent     `json:"irrigationEvents"`
	Recommendations  []WaterRecommendation `json:"recommendations"`
}

// RainForecast is the next expected rain event.
type RainForecast struct {
	NextRain    Date    `json:"nextRain"`
	Intensity   string  `json:"intensity"`
	Probability float64 `json:"probability"`
}

// RainfallBundle tracks daily rainfall and seasonal monsoon progress.
type RainfallBundle struct {
	DailyRainfall     Series       `json:"dailyRainfall"`
	MonsoonProgress   float64      `json:"monsoonProgress"`
	SeasonalTotal     float64      `json:"seasonalTotal"` // mm
	AverageComparison float64      `json:"averageComparison"`
	Forecast          RainForecast `json:"forecast"`
}

// HazardAlert is a hazard advisory.
type HazardAlert struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// HazardBundle holds fire risk and hazard advisories.
type HazardBundle struct {
	FireRiskIndex    float64       `json:"fireRiskIndex"`
	Alerts           []HazardAlert `json:"hazardAlerts"`
	HistoricalEvents []HazardAlert `json:"historicalEvents"`
}

// Snapshot groups every bundle for one field and range, as published by the feed.
type Snapshot struct {
	Field       Field            `json:"field"`
	Range       DateRange        `json:"dateRange"`
	Weather     WeatherBundle    `json:"weather"`
	Vegetation  VegetationBundle `json:"vegetation"`
	Soil        SoilProfile      `json:"soil"`
	Water       WaterBundle      `json:"water"`
	Rainfall    RainfallBundle   `json:"rainfall"`
	Hazard      HazardBundle     `json:"hazard"`
	GeneratedAt time.Time        `json:"generated_at"`
}

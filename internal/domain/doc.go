// Package domain models the agricultural telemetry shown on the field dashboard.
//
// # Data Source
//
// There is no sensor feed. Every series and record is synthesized on demand
// from fixed value ranges and a caller-supplied random source, so two fetches
// with identical inputs return bundles of identical shape but different
// values. Tests pass a seeded source (see [NewSeededRand]) to pin values.
//
// # Series Generation
//
// A series covers a [DateRange] and is anchored at the range end: the last
// point is dated End, earlier points step back one calendar day each.
//
//	dayCount = floor(End - Start in days) + 1
//
// Non-trending series draw each value independently and uniformly from
// [Min, Max]. Trending series (vegetation indices) ramp linearly from Min
// toward Max over the range with ±0.05 uniform noise. Values are rounded to
// the series precision (1 place for weather magnitudes, 2 for indices) and
// then clamped, so no value ever leaves [Min, Max].
//
// # Units
//
//	Temperature:     °C, 25–35
//	Humidity:        % relative, 50–85
//	Rainfall:        mm/day, 0–25
//	Soil moisture:   % volumetric, 30–70
//	NDVI / EVI:      unitless index, 0.4–0.85 / 0.2–0.7
//	GCI:             unitless index, 1–3
//	N / P / K:       kg/ha
//	Irrigation:      liters per event
//
// # Classification
//
// Status labels are pure functions of a value:
//
//	Soil pH:     <5.5 Acidic | 5.5–7.5 Optimal | >7.5 Alkaline
//	Nitrogen:    <30 critical | <60 below-optimal | else good
//	Phosphorus:  <20 critical | <40 below-optimal | else good
//	Potassium:   <100 critical | <200 below-optimal | else good
//	NDVI:        >0.7 Excellent | >0.5 Good | else Fair
//	Section:     ≥0.75 Excellent | ≥0.65 Good | ≥0.5 Moderate | else Poor
//
// Each label carries a presentation [Band] (red, yellow, green, blue, gray).
package domain

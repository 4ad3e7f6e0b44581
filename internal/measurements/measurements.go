package measurements

import "time"

// Measurement is one body composition check-in.
type Measurement struct {
	UserID            string  `json:"userId"`
	MeasurementDate   string  `json:"measurementDate"` // YYYY-MM-DD
	WeightKg          float64 `json:"weightKg"`
	MuscleMassKg      float64 `json:"muscleMassKg"`
	BodyFatPercentage float64 `json:"bodyFatPercentage"`
	VisceralFatLevel  int     `json:"visceralFatLevel"`
}

// Metric is one tracked quantity prepared for the progress chart:
// latest value, change since the previous check-in, and the last few
// values oldest first.
type Metric struct {
	Current string    `json:"current"`
	Change  string    `json:"change"`
	Trend   string    `json:"trend"` // up, down, stable
	History []float64 `json:"history"`
}

// Progress bundles the chart metrics of one user.
type Progress struct {
	Weight   Metric `json:"weight"`
	Muscle   Metric `json:"muscle"`
	BodyFat  Metric `json:"bodyFat"`
	Visceral Metric `json:"visceral"`
}

func todayDate(now time.Time) string {
	return now.Format("2006-01-02")
}

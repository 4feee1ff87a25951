// internal/web/meter.go
package web

import "strconv"

const (
	ColorGreen  = "text-green-500"
	ColorYellow = "text-yellow-500"
	ColorRed    = "text-red-500"

	MeterCaption = "ATS Shortlist Probability"
)

// Meter is the rendered form of an ATS score.
type Meter struct {
	Score      float64
	ColorClass string
	Headline   string
	Caption    string
}

// MatchMeter maps a score to its colour band. Scores are not range checked.
func MatchMeter(score float64) Meter {
	color := ColorRed
	switch {
	case score > 80:
		color = ColorGreen
	case score > 50:
		color = ColorYellow
	}
	return Meter{
		Score:      score,
		ColorClass: color,
		Headline:   strconv.FormatFloat(score, 'f', -1, 64) + "%",
		Caption:    MeterCaption,
	}
}

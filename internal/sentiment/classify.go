package sentiment

const (
	// MinScore is the lowest index value.
	MinScore = 0
	// MaxScore is the highest index value.
	MaxScore = 100
)

// Category is one of the five Fear & Greed bands.
type Category struct {
	Name  string `json:"name"`
	Lower int    `json:"lower"`
	Upper int    `json:"upper"`
	Hex   string `json:"hex"`
}

// Bands lists the categories from lowest to highest score. Lower bounds are
// inclusive; each Upper equals the next band's Lower.
var Bands = []Category{
	{Name: "Extreme Fear", Lower: 0, Upper: 25, Hex: "#dc2626"},
	{Name: "Fear", Lower: 25, Upper: 45, Hex: "#f97316"},
	{Name: "Neutral", Lower: 45, Upper: 55, Hex: "#facc15"},
	{Name: "Greed", Lower: 55, Upper: 75, Hex: "#4ade80"},
	{Name: "Extreme Greed", Lower: 75, Upper: 100, Hex: "#16a34a"},
}

// Classify maps a score onto its band. Scores outside [0,100] are clamped.
func Classify(score int) Category {
	score = Clamp(score)
	for i := len(Bands) - 1; i > 0; i-- {
		if score >= Bands[i].Lower {
			return Bands[i]
		}
	}
	return Bands[0]
}

// Clamp bounds a score to [MinScore, MaxScore].
func Clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

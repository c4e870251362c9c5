package matcher

// Factor weights are a closed policy constant; they sum to 1.0 and are not
// configurable per call.
const (
	WeightAmount = 0.4
	WeightDate   = 0.3
	WeightMemo   = 0.3
)

// dateWindowDays is the span over which date similarity decays to zero.
const dateWindowDays = 30

// Confidence band thresholds. Scores above HighConfidence qualify for
// auto-approval; between the two they are routed to manual review. Banding
// is display and automation policy only, never stored on the record.
const (
	HighConfidence   = 0.85
	MediumConfidence = 0.60
)

// Factor is one contributing similarity with its fixed weight and a short
// human-readable calculation trace.
type Factor struct {
	Name        string  `json:"name"`
	Weight      float64 `json:"weight"`
	Value       float64 `json:"value"`
	Explanation string  `json:"explanation"`
}

// Result is the combined match confidence with its per-factor breakdown.
type Result struct {
	Score        float64  `json:"score"`
	Factors      []Factor `json:"factors"`
	Calculations []string `json:"calculations"`
}

// Band classifies the score for display: "high", "medium" or "low".
func (r Result) Band() string {
	switch {
	case r.Score >= HighConfidence:
		return "high"
	case r.Score >= MediumConfidence:
		return "medium"
	default:
		return "low"
	}
}

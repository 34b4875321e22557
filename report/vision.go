package report

// SimulationStatus is the terminal state of one profile capture.
type SimulationStatus string

const (
	StatusCaptured SimulationStatus = "captured"
	StatusFailed   SimulationStatus = "failed"
)

// VisionSimulationResult is the outcome of one requested profile. Exactly
// one of Screenshot and Error is set.
type VisionSimulationResult struct {
	Type        string           `json:"type"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Explanation string           `json:"explanation"`
	Status      SimulationStatus `json:"status"`
	Screenshot  string           `json:"screenshot,omitempty"`
	Error       string           `json:"error,omitempty"`
	Timestamp   string           `json:"timestamp"`
}

// Captured reports whether the profile produced a screenshot.
func (r VisionSimulationResult) Captured() bool { return r.Status == StatusCaptured }

// VisionType is the public catalog entry for one profile.
type VisionType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Explanation string `json:"explanation"`
}

// SimulationSummary counts the outcomes of a simulation batch.
type SimulationSummary struct {
	TotalImpairments      int `json:"totalImpairments"`
	SuccessfulSimulations int `json:"successfulSimulations"`
	FailedSimulations     int `json:"failedSimulations"`
}

// RecommendationCategory is one titled group of design guidance.
type RecommendationCategory struct {
	Category        string   `json:"category"`
	Recommendations []string `json:"recommendations"`
}

// SimulationReport is the response of a vision simulation run.
type SimulationReport struct {
	URL              string                   `json:"url"`
	Simulations      []VisionSimulationResult `json:"simulations"`
	GeneratedAt      string                   `json:"generatedAt"`
	TotalSimulations int                      `json:"totalSimulations"`
	Summary          SimulationSummary        `json:"summary"`
	Recommendations  []RecommendationCategory `json:"recommendations"`
}

// Summarize counts captured and failed entries.
func Summarize(results []VisionSimulationResult) SimulationSummary {
	s := SimulationSummary{TotalImpairments: len(results)}
	for _, r := range results {
		if r.Captured() {
			s.SuccessfulSimulations++
		} else {
			s.FailedSimulations++
		}
	}
	return s
}

// Narration is a screen-reader rendition of a page's main content.
type Narration struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Narration string `json:"narration"`
	Fallback  bool   `json:"fallback,omitempty"`
	Timestamp string `json:"timestamp"`
}

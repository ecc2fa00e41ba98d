package domain

// RiskLevel is the discrete level derived from a probability score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// String returns the string representation of RiskLevel.
func (l RiskLevel) String() string {
	return string(l)
}

// PatternFlags holds the four basic detector outcomes.
type PatternFlags struct {
	Phishing    bool `json:"phishing"`
	RugPull     bool `json:"rugPull"`
	PumpAndDump bool `json:"pumpAndDump"`
	Honeypot    bool `json:"honeypot"`
}

// Finding is one detector's explicit outcome.
type Finding struct {
	Name     string  `json:"name"`
	Detected bool    `json:"detected"`
	Weight   float64 `json:"weight"`
}

// AdvisoryResult is the coarse signal extracted from the text-analysis service.
type AdvisoryResult struct {
	RiskAssessment   string   `json:"riskAssessment"` // high | medium | low | unknown
	Confidence       float64  `json:"confidence"`
	DetectedPatterns []string `json:"detectedPatterns"`
	Error            string   `json:"error,omitempty"`
}

// UnknownAdvisory is the neutral signal used when the service is unavailable.
func UnknownAdvisory(reason string) AdvisoryResult {
	return AdvisoryResult{
		RiskAssessment:   "unknown",
		Confidence:       0,
		DetectedPatterns: []string{},
		Error:            reason,
	}
}

// SophisticatedAnalysis is the output of the weighted multi-trade pattern bank.
type SophisticatedAnalysis struct {
	Patterns   []string       `json:"patterns"`
	RiskLevel  RiskLevel      `json:"riskLevel"`
	Confidence float64        `json:"confidence"`
	Findings   []Finding      `json:"findings"`
	Advisory   AdvisoryResult `json:"advisory"`
}

// ScamAnalysis combines the basic score with the additive sophisticated fields.
type ScamAnalysis struct {
	RiskLevel        RiskLevel    `json:"riskLevel"`
	ScamProbability  float64      `json:"scamProbability"`
	Warnings         []string     `json:"warnings"`
	DetectedPatterns PatternFlags `json:"detectedPatterns"`
	Findings         []Finding    `json:"findings"`

	SophisticatedPatterns  []string       `json:"sophisticatedPatterns"`
	SophisticatedRiskLevel RiskLevel      `json:"sophisticatedRiskLevel"`
	Confidence             float64        `json:"confidence"`
	Advisory               AdvisoryResult `json:"advisory"`
}

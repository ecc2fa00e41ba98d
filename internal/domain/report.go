package domain

// ScanReport is the persisted summary of one collection run.
// Corresponds to scan_reports table in PostgreSQL. Trades are never stored.
type ScanReport struct {
	ReportID              string    `json:"reportId"`              // deterministic hash
	Chain                 string    `json:"chain"`                 // provider chain name, e.g. eth-mainnet
	WalletAddress         string    `json:"walletAddress"`         // lowercased
	RiskLevel             RiskLevel `json:"riskLevel"`             // basic risk level
	ScamProbability       float64   `json:"scamProbability"`       // [0,1]
	Confidence            float64   `json:"confidence"`            // sophisticated confidence [0,1]
	Warnings              []string  `json:"warnings"`              // ordered
	SophisticatedPatterns []string  `json:"sophisticatedPatterns"` // labels
	RiskProfile           string    `json:"riskProfile"`           // trader tier
	TotalTransactions     int       `json:"totalTransactions"`
	DexTransactions       int       `json:"dexTransactions"`
	GeneratedAt           int64     `json:"generatedAt"` // Unix ms
}

// Assessment is the persisted outcome of one workflow run.
// Corresponds to tx_assessments table in ClickHouse.
type Assessment struct {
	AssessmentID string    `json:"assessmentId"`
	Chain        string    `json:"chain"`
	TxHash       string    `json:"txHash"`
	Success      bool      `json:"success"`
	FailedTools  []string  `json:"failedTools"` // names of tools that returned an error marker
	RiskLevel    RiskLevel `json:"riskLevel"`   // from the reputation payload, empty when unavailable
	SenderScore  float64   `json:"senderScore"` // from the reputation payload
	AssessedAt   int64     `json:"assessedAt"`  // Unix ms
}

// Alert types.
const (
	AlertHighRisk   = "high-risk"
	AlertSuspicious = "suspicious"
	AlertInfo       = "info"
)

// Alert is a notification published when an analysis crosses a risk threshold.
type Alert struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Chain       string `json:"chain"`
	Subject     string `json:"subject"` // wallet address or tx hash
	Timestamp   int64  `json:"timestamp"`
}

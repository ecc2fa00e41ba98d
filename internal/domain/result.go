package domain

import "encoding/json"

// CollectionResult is the terminal output of one collection pipeline run.
// On failure only Success and Error are set.
type CollectionResult struct {
	Success      bool           `json:"success"`
	Error        string         `json:"error,omitempty"`
	Trades       []Trade        `json:"trades,omitempty"`
	Profile      *TraderProfile `json:"profile,omitempty"`
	ScamAnalysis *ScamAnalysis  `json:"scamAnalysis,omitempty"`
	Summary      *Summary       `json:"summary,omitempty"`
}

// Summary describes the fetched history.
type Summary struct {
	TotalTransactions int              `json:"totalTransactions"`
	DexTransactions   int              `json:"dexTransactions"`
	Timespan          Timespan         `json:"timespan"`
	Transactions      []RawTransaction `json:"transactions"`
}

// Timespan bounds the parseable block timestamps. Empty when none parse.
type Timespan struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// MarshalJSON writes {"success":false,"error":...} for failures. A successful
// result always carries the trades array, even when it is empty.
func (r CollectionResult) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return json.Marshal(struct {
			Success bool   `json:"success"`
			Error   string `json:"error"`
		}{Success: false, Error: r.Error})
	}

	trades := r.Trades
	if trades == nil {
		trades = []Trade{}
	}
	return json.Marshal(struct {
		Success      bool           `json:"success"`
		Trades       []Trade        `json:"trades"`
		Profile      *TraderProfile `json:"profile"`
		ScamAnalysis *ScamAnalysis  `json:"scamAnalysis"`
		Summary      *Summary       `json:"summary"`
	}{
		Success:      true,
		Trades:       trades,
		Profile:      r.Profile,
		ScamAnalysis: r.ScamAnalysis,
		Summary:      r.Summary,
	})
}

// FailedCollection builds a failure result.
func FailedCollection(msg string) CollectionResult {
	return CollectionResult{Success: false, Error: msg}
}

// WorkflowResult merges the four tool payloads. Each payload is the tool's JSON
// verbatim, or an error marker {"error": "..."} when that tool failed.
type WorkflowResult struct {
	Success            bool            `json:"success"`
	Error              string          `json:"error,omitempty"`
	TradingPattern     json.RawMessage `json:"tradingPattern,omitempty"`
	MarketSentiment    json.RawMessage `json:"marketSentiment,omitempty"`
	VolumeAnalysis     json.RawMessage `json:"volumeAnalysis,omitempty"`
	ReputationAnalysis json.RawMessage `json:"reputationAnalysis,omitempty"`
}

// FailedWorkflow builds a workflow-level failure result.
func FailedWorkflow(msg string) WorkflowResult {
	return WorkflowResult{Success: false, Error: msg}
}

// ErrorMarker is the payload substituted for a failed tool.
type ErrorMarker struct {
	Error string `json:"error"`
}

// IsErrorMarker reports whether a tool payload carries an error key.
func IsErrorMarker(payload json.RawMessage) bool {
	if len(payload) == 0 {
		return true
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(payload, &probe); err != nil {
		return false
	}
	_, ok := probe["error"]
	return ok
}

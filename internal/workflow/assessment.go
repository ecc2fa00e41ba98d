package workflow

import (
	"encoding/json"
	"time"

	"chain-risk-lab/internal/domain"
	"chain-risk-lab/internal/idhash"
	"chain-risk-lab/internal/tools"
)

// Assess condenses a workflow result into a persistable Assessment. Risk level
// and sender score come from the reputation payload when it is usable.
func Assess(r domain.WorkflowResult, chain, hash string, now time.Time) *domain.Assessment {
	at := now.UnixMilli()
	a := &domain.Assessment{
		AssessmentID: idhash.ComputeAssessmentID(chain, hash, at),
		Chain:        chain,
		TxHash:       hash,
		Success:      r.Success,
		FailedTools:  FailedTools(r),
		AssessedAt:   at,
	}
	if !r.Success || domain.IsErrorMarker(r.ReputationAnalysis) {
		return a
	}

	var rep tools.ReputationReport
	if err := json.Unmarshal(r.ReputationAnalysis, &rep); err != nil {
		return a
	}
	if rep.SecurityMetrics != nil {
		a.RiskLevel = domain.RiskLevel(rep.SecurityMetrics.RiskLevel)
	}
	if rep.SenderScore != nil {
		a.SenderScore = *rep.SenderScore
	}
	return a
}

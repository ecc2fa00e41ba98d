// Package idhash derives deterministic record IDs.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// ComputeReportID computes a deterministic report_id.
// Formula: SHA256(chain|lower(wallet)|generated_at_ms)
// Returns hex-encoded hash (64 characters).
func ComputeReportID(chain, wallet string, generatedAt int64) string {
	return sum(fmt.Sprintf("report|%s|%s|%d", chain, strings.ToLower(wallet), generatedAt))
}

// ComputeAssessmentID computes a deterministic assessment_id.
// Formula: SHA256(chain|lower(tx_hash)|assessed_at_ms)
func ComputeAssessmentID(chain, txHash string, assessedAt int64) string {
	return sum(fmt.Sprintf("assessment|%s|%s|%d", chain, strings.ToLower(txHash), assessedAt))
}

func sum(data string) string {
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

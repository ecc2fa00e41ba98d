// Package alert builds and publishes risk alerts.
package alert

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"chain-risk-lab/internal/domain"
)

// Publisher delivers alerts to a downstream feed.
type Publisher interface {
	Publish(ctx context.Context, a domain.Alert) error
	Close() error
}

// New creates an alert with a random ID stamped at now.
func New(alertType, title, description, chain, subject string, now time.Time) domain.Alert {
	return domain.Alert{
		ID:          uuid.NewString(),
		Type:        alertType,
		Title:       title,
		Description: description,
		Chain:       chain,
		Subject:     subject,
		Timestamp:   now.UnixMilli(),
	}
}

// ForScan returns a high-risk alert when a wallet scan scored high.
func ForScan(r *domain.ScanReport, now time.Time) (domain.Alert, bool) {
	if r == nil || r.RiskLevel != domain.RiskHigh {
		return domain.Alert{}, false
	}
	desc := fmt.Sprintf("Scam probability %.2f", r.ScamProbability)
	if len(r.Warnings) > 0 {
		desc += ": " + strings.Join(r.Warnings, "; ")
	}
	return New(domain.AlertHighRisk, "High-risk wallet detected", desc, r.Chain, r.WalletAddress, now), true
}

// ForAssessment returns a suspicious-transaction alert when the workflow failed
// entirely or the reputation analysis rated the transaction high risk.
func ForAssessment(a *domain.Assessment, now time.Time) (domain.Alert, bool) {
	if a == nil {
		return domain.Alert{}, false
	}
	switch {
	case !a.Success:
		return New(domain.AlertSuspicious, "Transaction could not be assessed",
			"All analyses failed", a.Chain, a.TxHash, now), true
	case a.RiskLevel == domain.RiskHigh:
		return New(domain.AlertSuspicious, "Suspicious transaction",
			fmt.Sprintf("Reputation risk high, sender score %.0f", a.SenderScore), a.Chain, a.TxHash, now), true
	}
	return domain.Alert{}, false
}

// Nop discards alerts.
type Nop struct{}

func (Nop) Publish(context.Context, domain.Alert) error { return nil }
func (Nop) Close() error                                { return nil }

// Recorder keeps published alerts in memory.
type Recorder struct {
	mu     sync.Mutex
	alerts []domain.Alert
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish appends the alert.
func (r *Recorder) Publish(_ context.Context, a domain.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
	return nil
}

// Close is a no-op.
func (r *Recorder) Close() error { return nil }

// Alerts returns a copy of the published alerts in order.
func (r *Recorder) Alerts() []domain.Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Alert(nil), r.alerts...)
}

var (
	_ Publisher = Nop{}
	_ Publisher = (*Recorder)(nil)
)

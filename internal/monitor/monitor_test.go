package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chain-risk-lab/internal/alert"
	"chain-risk-lab/internal/domain"
	"chain-risk-lab/internal/provider/stub"
	"chain-risk-lab/internal/storage"
	"chain-risk-lab/internal/storage/memory"
	"chain-risk-lab/internal/workflow"
)

var fixedNow = time.UnixMilli(1709294400000)

func newMonitor(t *testing.T, opts ...Option) (*Monitor, *stub.Client, *memory.AssessmentStore, *alert.Recorder) {
	t.Helper()
	provider := stub.NewClient()
	store := memory.NewAssessmentStore()
	rec := alert.NewRecorder()
	opts = append([]Option{
		WithStore(store),
		WithPublisher(rec),
		WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	return New(workflow.New(provider), opts...), provider, store, rec
}

func TestHandle_LowRisk(t *testing.T) {
	m, provider, store, rec := newMonitor(t)
	provider.AddTransaction("eth-mainnet", domain.RawTransaction{TxHash: "0x1", Value: "1", GasPrice: "1"})

	a, err := m.Handle(context.Background(), Event{Hash: "0x1"})
	require.NoError(t, err)
	assert.True(t, a.Success)
	assert.Equal(t, "eth-mainnet", a.Chain)
	assert.Equal(t, domain.RiskLow, a.RiskLevel)
	assert.Empty(t, rec.Alerts())

	stored, err := store.ListByTx(context.Background(), "eth-mainnet", "0x1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, a.AssessmentID, stored[0].AssessmentID)
}

func TestHandle_HighRiskRaisesAlert(t *testing.T) {
	m, provider, _, rec := newMonitor(t)
	provider.AddTransaction("bsc-mainnet", domain.RawTransaction{
		TxHash:   "0x2",
		Value:    "5000000000000000000",
		GasPrice: "500000000000",
	})

	a, err := m.Handle(context.Background(), Event{Hash: "0x2", Chain: "bsc-mainnet"})
	require.NoError(t, err)
	assert.Equal(t, domain.RiskHigh, a.RiskLevel)

	alerts := rec.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertSuspicious, alerts[0].Type)
	assert.Equal(t, "0x2", alerts[0].Subject)
	assert.Equal(t, "bsc-mainnet", alerts[0].Chain)
}

func TestHandle_UnknownTransactionAlerts(t *testing.T) {
	m, _, _, rec := newMonitor(t)

	a, err := m.Handle(context.Background(), Event{Hash: "0xmissing"})
	require.NoError(t, err)
	assert.False(t, a.Success)
	require.Len(t, rec.Alerts(), 1)
	assert.Equal(t, "All analyses failed", rec.Alerts()[0].Description)
}

type failingStore struct{ storage.AssessmentStore }

func (failingStore) Insert(context.Context, *domain.Assessment) error {
	return errors.New("disk full")
}

func TestHandle_StoreFailureReported(t *testing.T) {
	m, provider, _, _ := newMonitor(t, WithStore(failingStore{}))
	provider.AddTransaction("eth-mainnet", domain.RawTransaction{TxHash: "0x3", Value: "1"})

	a, err := m.Handle(context.Background(), Event{Hash: "0x3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	require.NotNil(t, a)
	assert.True(t, a.Success)
}

func TestRun_DrainsChannel(t *testing.T) {
	m, provider, store, _ := newMonitor(t, WithWorkers(2))
	events := make(chan Event, 5)
	for _, h := range []string{"0xa", "0xb", "0xc", "0xd"} {
		provider.AddTransaction("eth-mainnet", domain.RawTransaction{TxHash: h, Value: "1"})
		events <- Event{Hash: h}
	}
	close(events)

	require.NoError(t, m.Run(context.Background(), events))

	recent, err := store.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, recent, 4)
}

func TestRun_StopsOnCancel(t *testing.T) {
	m, _, _, _ := newMonitor(t)
	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan Event)

	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, events) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chain-risk-lab/internal/alert"
	"chain-risk-lab/internal/collector"
	"chain-risk-lab/internal/domain"
	"chain-risk-lab/internal/provider/stub"
	"chain-risk-lab/internal/storage/memory"
	"chain-risk-lab/internal/workflow"
)

const (
	testChain  = "eth-mainnet"
	testWallet = "0x00000000000000000000000000000000000000AA"
	testHash   = "0xfeed"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	client      *stub.Client
	reports     *memory.ScanReportStore
	assessments *memory.AssessmentStore
	alerts      *alert.Recorder
	server      *Server
}

func newFixture(t *testing.T, c Collector) *fixture {
	t.Helper()
	f := &fixture{
		client:      stub.NewClient(),
		reports:     memory.NewScanReportStore(),
		assessments: memory.NewAssessmentStore(),
		alerts:      alert.NewRecorder(),
	}
	f.client.AddTransaction(testChain, domain.RawTransaction{
		TxHash:        testHash,
		BlockSignedAt: "2024-03-01T12:00:00Z",
		FromAddress:   "0x00000000000000000000000000000000000000aa",
		ToAddress:     "0x7a250d5630b4cf539739df2c5dacb4c659f2488d",
		Value:         "2000000000000000000",
		GasPrice:      "200000000000",
		GasSpent:      "21000",
	})
	if c == nil {
		c = collector.New(f.client)
	}
	f.server = NewServer(c, workflow.New(f.client),
		WithReportStore(f.reports),
		WithAssessmentStore(f.assessments),
		WithPublisher(f.alerts),
		WithClock(func() time.Time { return fixedNow }),
	)
	return f
}

func (f *fixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	f.server.Handler().ServeHTTP(rec, req)
	return rec
}

type cannedCollector struct {
	result domain.CollectionResult
}

func (c cannedCollector) Collect(context.Context, string, string) domain.CollectionResult {
	return c.result
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.get(t, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetrics(t *testing.T) {
	f := newFixture(t, nil)
	f.get(t, "/v1/wallets/"+testChain+"/"+testWallet+"/scan")

	rec := f.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "chain_risk_lab_collector_runs_total")
}

func TestScanWallet_StoresReport(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.get(t, "/v1/wallets/"+testChain+"/"+testWallet+"/scan")
	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.CollectionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	require.NotNil(t, result.ScamAnalysis)
	assert.Equal(t, domain.RiskLow, result.ScamAnalysis.RiskLevel)

	stored, err := f.reports.ListByWallet(context.Background(), testChain, testWallet, 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, strings.ToLower(testWallet), stored[0].WalletAddress)
	assert.Equal(t, fixedNow.UnixMilli(), stored[0].GeneratedAt)
	assert.Empty(t, f.alerts.Alerts(), "low risk raises no alert")
}

func TestScanWallet_HighRiskPublishesAlert(t *testing.T) {
	f := newFixture(t, cannedCollector{result: domain.CollectionResult{
		Success: true,
		ScamAnalysis: &domain.ScamAnalysis{
			RiskLevel:       domain.RiskHigh,
			ScamProbability: 0.9,
			Warnings:        []string{"Potential rug pull"},
		},
		Profile: &domain.TraderProfile{RiskProfile: domain.RiskTierHigh},
		Summary: &domain.Summary{TotalTransactions: 4, DexTransactions: 4},
	}})

	rec := f.get(t, "/v1/wallets/"+testChain+"/"+testWallet+"/scan")
	require.Equal(t, http.StatusOK, rec.Code)

	alerts := f.alerts.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertHighRisk, alerts[0].Type)
	assert.Equal(t, strings.ToLower(testWallet), alerts[0].Subject)
	assert.Contains(t, alerts[0].Description, "Potential rug pull")
}

func TestScanWallet_FetchFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.client.HistoryErr = errors.New("provider down")

	rec := f.get(t, "/v1/wallets/"+testChain+"/"+testWallet+"/scan")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"provider down"}`, rec.Body.String())

	stored, err := f.reports.ListByWallet(context.Background(), testChain, testWallet, 10)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestScanWallet_Markdown(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.get(t, "/v1/wallets/"+testChain+"/"+testWallet+"/scan?format=markdown")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rec.Body.String(), "# Wallet Risk Report")
	assert.Contains(t, rec.Body.String(), "No previous scans.")
}

func TestListReports(t *testing.T) {
	f := newFixture(t, nil)
	f.get(t, "/v1/wallets/"+testChain+"/"+testWallet+"/scan")

	rec := f.get(t, "/v1/wallets/"+testChain+"/"+testWallet+"/reports?limit=5")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Reports []domain.ScanReport `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Reports, 1)
	assert.Equal(t, testChain, body.Reports[0].Chain)

	rec = f.get(t, "/v1/wallets/"+testChain+"/"+testWallet+"/reports?limit=zero")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAssessTransaction(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.get(t, "/v1/tx/"+testChain+"/"+testHash+"/assessment")
	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.WorkflowResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)

	stored, err := f.assessments.ListByTx(context.Background(), testChain, testHash)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, domain.RiskHigh, stored[0].RiskLevel)
	assert.Equal(t, 35.0, stored[0].SenderScore)

	// 2 ETH at 200 gwei rates high reputation risk.
	alerts := f.alerts.Alerts()
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertSuspicious, alerts[0].Type)
	assert.Equal(t, testHash, alerts[0].Subject)
}

func TestAssessTransaction_UnknownHash(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.get(t, "/v1/tx/"+testChain+"/0xdead/assessment")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"All analyses failed"}`, rec.Body.String())

	stored, err := f.assessments.ListByTx(context.Background(), testChain, "0xdead")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.False(t, stored[0].Success)
	assert.Len(t, stored[0].FailedTools, 4)
}

func TestGetReport(t *testing.T) {
	f := newFixture(t, nil)
	f.get(t, "/v1/wallets/"+testChain+"/"+testWallet+"/scan")

	stored, err := f.reports.ListByWallet(context.Background(), testChain, testWallet, 1)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	rec := f.get(t, "/v1/reports/"+stored[0].ReportID)
	require.Equal(t, http.StatusOK, rec.Code)
	var report domain.ScanReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, stored[0].ReportID, report.ReportID)
	assert.Equal(t, strings.ToLower(testWallet), report.WalletAddress)

	rec = f.get(t, "/v1/reports/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListTxAssessments(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.get(t, "/v1/tx/"+testChain+"/"+testHash+"/assessments")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"assessments":[]}`, rec.Body.String())

	f.get(t, "/v1/tx/"+testChain+"/"+testHash+"/assessment")

	rec = f.get(t, "/v1/tx/"+testChain+"/"+testHash+"/assessments")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Assessments []domain.Assessment `json:"assessments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Assessments, 1)
	assert.Equal(t, testHash, body.Assessments[0].TxHash)
	assert.Equal(t, domain.RiskHigh, body.Assessments[0].RiskLevel)
}

func TestListRecentAssessments(t *testing.T) {
	f := newFixture(t, nil)
	f.get(t, "/v1/tx/"+testChain+"/"+testHash+"/assessment")
	f.get(t, "/v1/tx/"+testChain+"/0xdead/assessment")

	rec := f.get(t, "/v1/assessments/recent")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Assessments []domain.Assessment `json:"assessments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Assessments, 2)

	rec = f.get(t, "/v1/assessments/recent?limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Assessments, 1)

	rec = f.get(t, "/v1/assessments/recent?limit=-3")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

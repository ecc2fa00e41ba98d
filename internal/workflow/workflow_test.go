package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chain-risk-lab/internal/domain"
	"chain-risk-lab/internal/provider/stub"
	"chain-risk-lab/internal/tools"
)

const (
	chain = "eth-mainnet"
	hash  = "0xfeed"
)

func newStub(value string) *stub.Client {
	c := stub.NewClient()
	c.AddTransaction(chain, domain.RawTransaction{
		TxHash:        hash,
		BlockSignedAt: "2024-03-01T12:00:00Z",
		FromAddress:   "0x00000000000000000000000000000000000000aa",
		ToAddress:     "0x7a250d5630b4cf539739df2c5dacb4c659f2488d",
		Value:         domain.Quantity(value),
		GasPrice:      "5000000000",
		GasSpent:      "21000",
	})
	return c
}

func TestExecute_AllToolsSucceed(t *testing.T) {
	w := New(newStub("2000000000000000000"))
	result := w.Execute(context.Background(), chain, hash)

	require.True(t, result.Success)
	assert.Empty(t, result.Error)
	for _, p := range []json.RawMessage{result.TradingPattern, result.MarketSentiment, result.VolumeAnalysis, result.ReputationAnalysis} {
		assert.False(t, domain.IsErrorMarker(p))
	}
	assert.Empty(t, FailedTools(result))

	var sentiment tools.MarketSentimentReport
	require.NoError(t, json.Unmarshal(result.MarketSentiment, &sentiment))
	assert.Equal(t, tools.SentimentBullish, sentiment.MarketSentiment.Overall)
}

func TestExecute_PartialSuccess(t *testing.T) {
	// A fractional value is not an integer, so only market sentiment fails.
	w := New(newStub("1.5"))
	result, err := w.Run(context.Background(), chain, hash)
	require.NoError(t, err)

	require.True(t, result.Success)
	assert.JSONEq(t, `{"error":"Market sentiment analysis failed"}`, string(result.MarketSentiment))
	assert.False(t, domain.IsErrorMarker(result.TradingPattern))
	assert.False(t, domain.IsErrorMarker(result.VolumeAnalysis))
	assert.False(t, domain.IsErrorMarker(result.ReputationAnalysis))
	assert.Equal(t, []string{tools.NameMarketSentiment}, FailedTools(result))
}

func TestExecute_AllToolsFail(t *testing.T) {
	c := newStub("1")
	c.TransactionErr = errors.New("provider down")

	result, err := New(c).Run(context.Background(), chain, hash)
	assert.ErrorIs(t, err, ErrAllToolsFailed)
	assert.False(t, result.Success)
	assert.Equal(t, "All analyses failed", result.Error)
	assert.Nil(t, result.TradingPattern)
	assert.Len(t, FailedTools(result), 4)
}

func TestExecute_UnknownHash(t *testing.T) {
	result := New(stub.NewClient()).Execute(context.Background(), chain, "0xmissing")
	assert.False(t, result.Success)
	assert.Equal(t, ErrMsgAllFailed, result.Error)
}

func TestExecute_MissingInput(t *testing.T) {
	w := New(newStub("1"))
	for _, in := range [][2]string{{"", hash}, {chain, ""}, {"", ""}} {
		result, err := w.Run(context.Background(), in[0], in[1])
		assert.ErrorIs(t, err, ErrMissingInput)
		assert.Equal(t, domain.WorkflowResult{Success: false, Error: "Chain and hash are required"}, result)
	}
}

func TestExecute_FetchesPerTool(t *testing.T) {
	var calls atomic.Int32
	counting := func(name string) tools.Tool {
		return tools.Tool{
			Name:         name,
			FailureLabel: name + " failed",
			Analyze: func(_ string, tx *domain.RawTransaction) (any, error) {
				calls.Add(1)
				return map[string]string{"hash": tx.TxHash}, nil
			},
		}
	}
	w := New(newStub("1"), WithTools([]tools.Tool{
		counting(tools.NameTradingPattern),
		counting(tools.NameMarketSentiment),
		counting(tools.NameVolumeAnalysis),
		counting(tools.NameReputationAnalysis),
	}))

	result := w.Execute(context.Background(), chain, hash)
	require.True(t, result.Success)
	assert.Equal(t, int32(4), calls.Load())
	assert.JSONEq(t, `{"hash":"0xfeed"}`, string(result.VolumeAnalysis))
}

func TestExecute_ToolsRunConcurrently(t *testing.T) {
	// Every tool waits until all four have started, so sequential
	// execution would time out at the first one.
	var arrived sync.WaitGroup
	arrived.Add(4)
	allStarted := make(chan struct{})
	go func() {
		arrived.Wait()
		close(allStarted)
	}()
	rendezvous := func() error {
		arrived.Done()
		select {
		case <-allStarted:
			return nil
		case <-time.After(5 * time.Second):
			return errors.New("tools did not start together")
		}
	}

	var slowDone atomic.Bool
	tool := func(name string, analyze tools.AnalyzeFunc) tools.Tool {
		return tools.Tool{Name: name, FailureLabel: name + " failed", Analyze: analyze}
	}
	succeed := func(_ string, tx *domain.RawTransaction) (any, error) {
		if err := rendezvous(); err != nil {
			return nil, err
		}
		return map[string]string{"hash": tx.TxHash}, nil
	}
	w := New(newStub("1"), WithTools([]tools.Tool{
		tool(tools.NameTradingPattern, func(string, *domain.RawTransaction) (any, error) {
			if err := rendezvous(); err != nil {
				return nil, err
			}
			return nil, errors.New("bad input")
		}),
		tool(tools.NameMarketSentiment, succeed),
		tool(tools.NameVolumeAnalysis, func(string, *domain.RawTransaction) (any, error) {
			if err := rendezvous(); err != nil {
				return nil, err
			}
			time.Sleep(100 * time.Millisecond)
			slowDone.Store(true)
			return map[string]bool{"slow": true}, nil
		}),
		tool(tools.NameReputationAnalysis, succeed),
	}))

	result, err := w.Run(context.Background(), chain, hash)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.True(t, slowDone.Load(), "Run returned before the slow tool finished")
	assert.JSONEq(t, `{"slow":true}`, string(result.VolumeAnalysis))
	assert.JSONEq(t, `{"error":"tradingPattern failed"}`, string(result.TradingPattern))
	assert.JSONEq(t, `{"hash":"0xfeed"}`, string(result.MarketSentiment))
	assert.JSONEq(t, `{"hash":"0xfeed"}`, string(result.ReputationAnalysis))
	assert.Equal(t, []string{tools.NameTradingPattern}, FailedTools(result))
}

func TestExecute_NoTools(t *testing.T) {
	result, err := New(newStub("1"), WithTools(nil)).Run(context.Background(), chain, hash)
	assert.ErrorIs(t, err, ErrNoTools)
	assert.Equal(t, domain.WorkflowResult{Success: false, Error: ErrMsgNoTools}, result)
}

func TestExecute_PanickingToolBecomesMarker(t *testing.T) {
	reg := tools.Registry()
	reg[2].Analyze = func(string, *domain.RawTransaction) (any, error) {
		panic("boom")
	}
	result := New(newStub("1"), WithTools(reg)).Execute(context.Background(), chain, hash)

	require.True(t, result.Success)
	assert.JSONEq(t, `{"error":"Volume analysis failed"}`, string(result.VolumeAnalysis))
}

func TestExecute_NormalizesTransaction(t *testing.T) {
	c := stub.NewClient()
	c.AddTransaction(chain, domain.RawTransaction{TxHash: hash, GasPrice: "1"})

	result := New(c).Execute(context.Background(), chain, hash)
	require.True(t, result.Success)

	var volume tools.VolumeReport
	require.NoError(t, json.Unmarshal(result.VolumeAnalysis, &volume))
	assert.Equal(t, "0", volume.TransactionValue)
}

func TestAssess(t *testing.T) {
	now := time.UnixMilli(1709294400000)

	// 2 ETH at 200 gwei trips both reputation penalties.
	c := stub.NewClient()
	c.AddTransaction(chain, domain.RawTransaction{
		TxHash:    hash,
		ToAddress: "0x7a250d5630b4cf539739df2c5dacb4c659f2488d",
		Value:     "2000000000000000000",
		GasPrice:  "200000000000",
	})
	result := New(c).Execute(context.Background(), chain, hash)

	a := Assess(result, chain, hash, now)
	assert.True(t, a.Success)
	assert.Equal(t, domain.RiskHigh, a.RiskLevel)
	assert.Equal(t, 35.0, a.SenderScore)
	assert.Empty(t, a.FailedTools)
	assert.Equal(t, int64(1709294400000), a.AssessedAt)
	assert.Len(t, a.AssessmentID, 64)

	failed := Assess(domain.FailedWorkflow(ErrMsgAllFailed), chain, hash, now)
	assert.False(t, failed.Success)
	assert.Empty(t, failed.RiskLevel)
	assert.Len(t, failed.FailedTools, 4)
}

// Package stub provides an in-memory provider.Client for tests and offline runs.
package stub

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"chain-risk-lab/internal/domain"
	"chain-risk-lab/internal/provider"
)

// Client implements provider.Client from fixtures.
type Client struct {
	mu           sync.RWMutex
	histories    map[string][]domain.RawTransaction
	transactions map[string]domain.RawTransaction
	errs         map[string]error

	// HistoryErr, when set, is returned by every history request.
	HistoryErr error
	// TransactionErr, when set, is returned by every transaction request.
	TransactionErr error
}

// NewClient creates an empty stub client.
func NewClient() *Client {
	return &Client{
		histories:    make(map[string][]domain.RawTransaction),
		transactions: make(map[string]domain.RawTransaction),
		errs:         make(map[string]error),
	}
}

var _ provider.Client = (*Client)(nil)

func key(chain, id string) string {
	return chain + "/" + strings.ToLower(id)
}

// AddHistory sets the history of an address and indexes its transactions by hash.
func (c *Client) AddHistory(chain, address string, txs []domain.RawTransaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.histories[key(chain, address)] = txs
	for _, tx := range txs {
		c.transactions[key(chain, tx.TxHash)] = tx
	}
}

// AddTransaction registers a single transaction.
func (c *Client) AddTransaction(chain string, tx domain.RawTransaction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transactions[key(chain, tx.TxHash)] = tx
}

// FailFor makes requests for one address or hash return err.
func (c *Client) FailFor(chain, id string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs[key(chain, id)] = err
}

// GetTransactionsForAddress returns the registered history. Unknown addresses
// have an empty history.
func (c *Client) GetTransactionsForAddress(_ context.Context, chain, address string) (*provider.Response, error) {
	if c.HistoryErr != nil {
		return nil, c.HistoryErr
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err, ok := c.errs[key(chain, address)]; ok {
		return nil, err
	}
	txs := c.histories[key(chain, address)]
	items := make([]domain.RawTransaction, len(txs))
	copy(items, txs)
	return &provider.Response{Items: items}, nil
}

// GetTransaction returns a single-item response, or an empty item list when
// the hash is unknown.
func (c *Client) GetTransaction(_ context.Context, chain, hash string) (*provider.Response, error) {
	if c.TransactionErr != nil {
		return nil, c.TransactionErr
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err, ok := c.errs[key(chain, hash)]; ok {
		return nil, err
	}
	tx, ok := c.transactions[key(chain, hash)]
	if !ok {
		return &provider.Response{Items: []domain.RawTransaction{}}, nil
	}
	return &provider.Response{Items: []domain.RawTransaction{tx}}, nil
}

// fixture is the on-disk format read by LoadFile.
type fixture struct {
	Chain   string                  `json:"chain"`
	Address string                  `json:"address"`
	Items   []domain.RawTransaction `json:"items"`
}

// LoadFile reads a JSON fixture ({"chain","address","items"}) into a new client.
func LoadFile(path string) (*Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var f fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	c := NewClient()
	c.AddHistory(f.Chain, f.Address, f.Items)
	return c, nil
}

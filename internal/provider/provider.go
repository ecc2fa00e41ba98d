// Package provider defines the transaction data provider contract and its
// HTTP implementation.
package provider

import (
	"context"
	"errors"
	"fmt"

	"chain-risk-lab/internal/domain"
)

// ErrNotFound is returned when the provider has no record for a request.
var ErrNotFound = errors.New("provider: not found")

// Client fetches raw transactions from a blockchain data provider.
type Client interface {
	// GetTransactionsForAddress returns the full history of an address.
	GetTransactionsForAddress(ctx context.Context, chain, address string) (*Response, error)

	// GetTransaction returns a single-item response for a transaction hash.
	GetTransaction(ctx context.Context, chain, hash string) (*Response, error)
}

// Response is the data part of a provider envelope.
// Items is nil when the provider omitted the item list.
type Response struct {
	Items []domain.RawTransaction `json:"items"`
}

// HasItems reports whether the response carries an item list (possibly empty).
func (r *Response) HasItems() bool {
	return r != nil && r.Items != nil
}

// APIError is an error envelope returned by the provider.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

// envelope is the raw wire format of every provider response.
type envelope struct {
	Data         *envelopeData `json:"data"`
	Error        bool          `json:"error"`
	ErrorMessage string        `json:"error_message"`
	ErrorCode    int           `json:"error_code"`
}

type envelopeData struct {
	Items []domain.RawTransaction `json:"items"`
	Links *envelopeLinks          `json:"links"`
}

type envelopeLinks struct {
	Next *string `json:"next"`
}

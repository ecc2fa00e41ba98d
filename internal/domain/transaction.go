package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// RawTransaction is a chain-native transaction record as returned by the data provider.
// Field names follow the provider's wire format.
type RawTransaction struct {
	TxHash        string     `json:"tx_hash"`
	BlockHeight   int64      `json:"block_height"`
	BlockSignedAt string     `json:"block_signed_at"` // RFC3339, may be unparseable
	FromAddress   string     `json:"from_address"`
	ToAddress     string     `json:"to_address"`
	Value         Quantity   `json:"value"`
	GasPrice      Quantity   `json:"gas_price"`
	GasSpent      Quantity   `json:"gas_spent"`
	Successful    *bool      `json:"successful"` // nil means unknown, treated as true
	Input         string     `json:"input,omitempty"`
	LogEvents     []LogEvent `json:"log_events"`
}

// LogEvent is one decoded contract event within a transaction.
type LogEvent struct {
	SenderAddress string        `json:"sender_address"`
	TickerSymbol  string        `json:"sender_contract_ticker_symbol"`
	Decoded       *DecodedEvent `json:"decoded"` // nil when the provider could not decode
}

// DecodedEvent is the provider's ABI decoding of a log.
type DecodedEvent struct {
	Name   string         `json:"name"`
	Params []DecodedParam `json:"params"`
}

// DecodedParam is one decoded event parameter. Value is kept raw because
// providers emit strings, numbers, booleans or nested arrays here.
type DecodedParam struct {
	Name  string          `json:"name"`
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Text returns the parameter value as text. Strings are returned unquoted,
// numbers verbatim; anything else (null, bool, object, array) yields "".
func (p DecodedParam) Text() string {
	raw := strings.TrimSpace(string(p.Value))
	if raw == "" || raw == "null" {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(p.Value, &s); err != nil {
			return ""
		}
		return s
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return raw
	default:
		return ""
	}
}

// IsSuccessful reports the success flag, defaulting to true when absent.
func (t *RawTransaction) IsSuccessful() bool {
	return t.Successful == nil || *t.Successful
}

// SignedAt parses BlockSignedAt. ok is false when the timestamp is missing or malformed.
func (t *RawTransaction) SignedAt() (time.Time, bool) {
	if t.BlockSignedAt == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, t.BlockSignedAt)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// Normalize fills the defaults the pipeline relies on: a missing value becomes "0"
// and a missing success flag becomes true.
func (t *RawTransaction) Normalize() {
	if t.Value == "" {
		t.Value = ZeroQuantity
	}
	if t.Successful == nil {
		ok := true
		t.Successful = &ok
	}
}

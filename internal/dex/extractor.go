package dex

import (
	"strings"

	"chain-risk-lab/internal/domain"
)

const transferEvent = "Transfer"

// Transfer parameter positions: from, to, value.
const (
	paramFrom   = 0
	paramTo     = 1
	paramAmount = 2
)

// Extract reconstructs a trade from a DEX-bound transaction.
// ok is false when neither leg has a token address. Extract never panics on
// missing or malformed logs; absent legs come back as domain.EmptyLeg.
func Extract(tx *domain.RawTransaction, venue, nativeSymbol string) (domain.Trade, bool) {
	tokenIn := findLeg(tx, paramTo)
	if tokenIn.Address == "" && !tx.Value.IsZero() {
		tokenIn = domain.TokenLeg{
			Address: domain.NativeTokenAddress,
			Symbol:  nativeSymbol,
			Amount:  tx.Value,
		}
	}
	tokenOut := findLeg(tx, paramFrom)

	if tokenIn.Address == "" && tokenOut.Address == "" {
		return domain.Trade{}, false
	}

	var ts int64
	at, hasTime := tx.SignedAt()
	if hasTime {
		ts = at.UnixMilli()
	}

	return domain.Trade{
		BlockHeight:   tx.BlockHeight,
		Timestamp:     ts,
		NoTimestamp:   !hasTime,
		TxHash:        tx.TxHash,
		WalletAddress: tx.FromAddress,
		Dex:           venue,
		TokenIn:       tokenIn,
		TokenOut:      tokenOut,
	}, true
}

// findLeg returns the first Transfer whose parameter at position matches the
// transaction's recipient (the router).
func findLeg(tx *domain.RawTransaction, position int) domain.TokenLeg {
	router := strings.ToLower(tx.ToAddress)
	if router == "" {
		return domain.EmptyLeg()
	}

	for _, log := range tx.LogEvents {
		if log.Decoded == nil || log.Decoded.Name != transferEvent {
			continue
		}
		params := log.Decoded.Params
		if len(params) <= position {
			continue
		}
		if strings.ToLower(params[position].Text()) != router {
			continue
		}

		symbol := log.TickerSymbol
		if symbol == "" {
			symbol = domain.SymbolUnknown
		}
		amount := domain.ZeroQuantity
		if len(params) > paramAmount {
			if v := params[paramAmount].Text(); v != "" {
				amount = domain.Quantity(v)
			}
		}
		return domain.TokenLeg{
			Address: log.SenderAddress,
			Symbol:  symbol,
			Amount:  amount,
		}
	}
	return domain.EmptyLeg()
}

// Reconstruct classifies txs in input order and extracts a trade from every
// DEX-bound transaction that yields one.
func (c *Classifier) Reconstruct(chain string, txs []domain.RawTransaction) []domain.Trade {
	native := NativeSymbol(chain)
	trades := make([]domain.Trade, 0)
	for i := range txs {
		class := c.Classify(&txs[i])
		if !class.IsDex {
			continue
		}
		if trade, ok := Extract(&txs[i], class.Venue, native); ok {
			trades = append(trades, trade)
		}
	}
	return trades
}

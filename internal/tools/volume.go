package tools

import (
	"github.com/shopspring/decimal"

	"chain-risk-lab/internal/domain"
)

var (
	largeVolumeWei  = decimal.New(1, 20)
	mediumVolumeWei = decimal.New(1, 19)
)

// VolumeReport is the volume tool payload.
type VolumeReport struct {
	TransactionValue string        `json:"transactionValue"`
	GasMetrics       GasMetrics    `json:"gasMetrics"`
	VolumeProfile    VolumeProfile `json:"volumeProfile"`
	Metrics          VolumeMetrics `json:"metrics"`
}

type GasMetrics struct {
	Price string `json:"price"`
	Spent string `json:"spent"`
}

type VolumeProfile struct {
	Size   string `json:"size"`
	Impact string `json:"impact"`
}

type VolumeMetrics struct {
	ValueInEth     float64 `json:"valueInEth"`
	GasPriceInGwei float64 `json:"gasPriceInGwei"`
}

// VolumeAnalysis buckets the native value and converts units.
func VolumeAnalysis(_ string, tx *domain.RawTransaction) (any, error) {
	value, err := parseDecimal("value", tx.Value)
	if err != nil {
		return nil, err
	}
	gasPrice, err := parseDecimal("gas price", tx.GasPrice)
	if err != nil {
		return nil, err
	}

	profile := VolumeProfile{Size: "small", Impact: "low"}
	switch {
	case value.GreaterThan(largeVolumeWei):
		profile = VolumeProfile{Size: "large", Impact: "high"}
	case value.GreaterThan(mediumVolumeWei):
		profile = VolumeProfile{Size: "medium", Impact: "medium"}
	}

	return VolumeReport{
		TransactionValue: tx.Value.String(),
		GasMetrics: GasMetrics{
			Price: tx.GasPrice.String(),
			Spent: tx.GasSpent.String(),
		},
		VolumeProfile: profile,
		Metrics: VolumeMetrics{
			ValueInEth:     value.Div(weiPerEth).InexactFloat64(),
			GasPriceInGwei: gasPrice.Div(weiPerGwei).InexactFloat64(),
		},
	}, nil
}

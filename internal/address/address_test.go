package address

import (
	"crypto/sha256"
	"testing"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	evmAddr    = "0x7a250d5630b4cf539739df2c5dacb4c659f2488d"
	solanaAddr = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
)

// offCurveAddress hashes seeds until the digest is not a curve point.
func offCurveAddress(t *testing.T) string {
	t.Helper()
	for i := 0; i < 256; i++ {
		sum := sha256.Sum256([]byte{byte(i), 'p', 'd', 'a'})
		if _, err := new(edwards25519.Point).SetBytes(sum[:]); err != nil {
			return base58.Encode(sum[:])
		}
	}
	t.Fatal("no off-curve digest found")
	return ""
}

func onCurveAddress() string {
	return base58.Encode(edwards25519.NewGeneratorPoint().Bytes())
}

func TestDetect(t *testing.T) {
	tests := []struct {
		addr string
		want Format
	}{
		{evmAddr, FormatEVM},
		{"0X7A250D5630B4CF539739DF2C5DACB4C659F2488D", FormatEVM},
		{solanaAddr, FormatSolana},
		{"7a250d5630b4cf539739df2c5dacb4c659f2488d", FormatUnknown},
		{"0x1234", FormatUnknown},
		{"vitalik.eth", FormatUnknown},
		{"", FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(tt.addr))
		})
	}
}

func TestChecksum(t *testing.T) {
	got, err := Checksum(evmAddr)
	require.NoError(t, err)
	assert.Equal(t, "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D", got)

	_, err = Checksum(solanaAddr)
	assert.Error(t, err)
}

func TestIsProgramDerived(t *testing.T) {
	pda, err := IsProgramDerived(offCurveAddress(t))
	require.NoError(t, err)
	assert.True(t, pda)

	pda, err = IsProgramDerived(onCurveAddress())
	require.NoError(t, err)
	assert.False(t, pda)

	_, err = IsProgramDerived(evmAddr)
	assert.Error(t, err)
}

func TestIsContract(t *testing.T) {
	assert.True(t, IsContract("eth-mainnet", evmAddr))
	assert.False(t, IsContract("eth-mainnet", "not-hex"))
	assert.True(t, IsContract("solana-mainnet", offCurveAddress(t)))
	assert.False(t, IsContract("solana-mainnet", onCurveAddress()))
	assert.False(t, IsContract("solana-mainnet", "garbage"))
}

// Package address recognizes EVM and Solana address formats.
package address

import (
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
)

// Format is a recognized address encoding.
type Format string

const (
	FormatEVM     Format = "evm"
	FormatSolana  Format = "solana"
	FormatUnknown Format = "unknown"
)

// solanaKeyLen is the size of a decoded Solana public key.
const solanaKeyLen = 32

// Detect returns the format of addr.
func Detect(addr string) Format {
	addr = strings.TrimSpace(addr)
	switch {
	case IsEVM(addr):
		return FormatEVM
	case IsSolana(addr):
		return FormatSolana
	default:
		return FormatUnknown
	}
}

// IsEVM reports whether addr is a 0x-prefixed 20-byte hex address.
func IsEVM(addr string) bool {
	if !strings.HasPrefix(addr, "0x") && !strings.HasPrefix(addr, "0X") {
		return false
	}
	return common.IsHexAddress(addr)
}

// IsSolana reports whether addr is base58 encoding exactly 32 bytes.
func IsSolana(addr string) bool {
	_, err := decodeSolana(addr)
	return err == nil
}

// Checksum returns the EIP-55 form of an EVM address.
func Checksum(addr string) (string, error) {
	if !IsEVM(addr) {
		return "", fmt.Errorf("not an EVM address: %q", addr)
	}
	return common.HexToAddress(addr).Hex(), nil
}

// IsProgramDerived reports whether a Solana address is off the ed25519
// curve. Off-curve addresses have no private key and are owned by programs.
func IsProgramDerived(addr string) (bool, error) {
	key, err := decodeSolana(addr)
	if err != nil {
		return false, err
	}
	return !isOnCurve(key), nil
}

// IsContract reports whether the recipient of a transaction is a contract
// rather than a key-holding account, as far as the format tells. EVM
// recipients are treated as contracts whenever they are 0x-prefixed.
func IsContract(chain, addr string) bool {
	if strings.HasPrefix(strings.ToLower(chain), "solana") {
		pda, err := IsProgramDerived(addr)
		return err == nil && pda
	}
	return strings.HasPrefix(addr, "0x")
}

func decodeSolana(addr string) ([]byte, error) {
	if addr == "" {
		return nil, fmt.Errorf("empty address")
	}
	key, err := base58.Decode(addr)
	if err != nil {
		return nil, fmt.Errorf("decode base58: %w", err)
	}
	if len(key) != solanaKeyLen {
		return nil, fmt.Errorf("invalid key length %d", len(key))
	}
	return key, nil
}

func isOnCurve(point []byte) bool {
	if len(point) != solanaKeyLen {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(point)
	return err == nil
}

// Package wire converts between loosely typed JSON-RPC parameters and results
// and the typed values the light client consumes and produces.
package wire

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/entity"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/apperr"
)

const (
	addressHexLen = 2 + 2*common.AddressLength
	hashHexLen    = 2 + 2*common.HashLength
)

var blockTagKeywords = map[string]entity.BlockTag{
	"latest":    entity.Latest,
	"finalized": entity.Finalized,
	"safe":      entity.Safe,
	"earliest":  entity.Earliest,
	"pending":   entity.Pending,
}

// DecodeBlockTag parses a block keyword or a non-negative integer written in
// decimal or 0x-prefixed hex. Keywords are matched exactly.
func DecodeBlockTag(s string) (entity.BlockTag, error) {
	if tag, ok := blockTagKeywords[s]; ok {
		return tag, nil
	}
	n, err := parseQuantity(s)
	if err != nil {
		return entity.BlockTag{}, apperr.NewInvalidArgErr(fmt.Sprintf("invalid block tag %q", s), err)
	}
	return entity.ExactNumber(n), nil
}

// DecodeIndex parses a transaction index using the numeric block tag rules.
func DecodeIndex(s string) (uint64, error) {
	n, err := parseQuantity(s)
	if err != nil {
		return 0, apperr.NewInvalidArgErr(fmt.Sprintf("invalid index %q", s), err)
	}
	return n, nil
}

// DecodeAddress requires exactly 0x followed by 40 hex digits.
func DecodeAddress(s string) (common.Address, error) {
	if len(s) != addressHexLen {
		return common.Address{}, apperr.NewInvalidArgErr(
			fmt.Sprintf("invalid address: want %d characters, got %d", addressHexLen, len(s)), nil)
	}
	b, err := decodeHex(s)
	if err != nil {
		return common.Address{}, apperr.NewInvalidArgErr("invalid address", err)
	}
	return common.BytesToAddress(b), nil
}

// DecodeHash requires exactly 0x followed by 64 hex digits.
func DecodeHash(s string) (common.Hash, error) {
	if len(s) != hashHexLen {
		return common.Hash{}, apperr.NewInvalidArgErr(
			fmt.Sprintf("invalid hash: want %d characters, got %d", hashHexLen, len(s)), nil)
	}
	b, err := decodeHex(s)
	if err != nil {
		return common.Hash{}, apperr.NewInvalidArgErr("invalid hash", err)
	}
	return common.BytesToHash(b), nil
}

// DecodeBytes decodes a 0x-prefixed, even-length hex string of any length.
func DecodeBytes(s string) ([]byte, error) {
	b, err := decodeHex(s)
	if err != nil {
		return nil, apperr.NewInvalidArgErr("invalid hex bytes", err)
	}
	return b, nil
}

// decodeHex is hexutil.Decode restricted to the lowercase 0x prefix.
func decodeHex(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") {
		return nil, hexutil.ErrMissingPrefix
	}
	return hexutil.Decode(s)
}

// DecodeBool accepts only the exact strings "true" and "false".
func DecodeBool(s string) (bool, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, apperr.NewInvalidArgErr(fmt.Sprintf("invalid boolean %q: want \"true\" or \"false\"", s), nil)
	}
}

// DecodeBigQuantity parses an arbitrary-size non-negative integer in decimal
// or 0x-prefixed hex.
func DecodeBigQuantity(s string) (*big.Int, error) {
	digits, base, err := splitQuantity(s)
	if err != nil {
		return nil, apperr.NewInvalidArgErr(fmt.Sprintf("invalid quantity %q", s), err)
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, apperr.NewInvalidArgErr(fmt.Sprintf("invalid quantity %q", s), hexutil.ErrSyntax)
	}
	return n, nil
}

func parseQuantity(s string) (uint64, error) {
	digits, base, err := splitQuantity(s)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(digits, base, 64)
}

// splitQuantity strips the 0x prefix and rejects anything but bare digits, so
// signs and underscores never reach the numeric parsers.
func splitQuantity(s string) (string, int, error) {
	if s == "" {
		return "", 0, hexutil.ErrEmptyString
	}
	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") {
		base = 16
		digits = s[2:]
		if digits == "" {
			return "", 0, hexutil.ErrEmptyNumber
		}
	}
	for _, c := range digits {
		if !isDigit(c, base) {
			return "", 0, hexutil.ErrSyntax
		}
	}
	return digits, base, nil
}

func isDigit(c rune, base int) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case base == 16 && c >= 'a' && c <= 'f':
		return true
	case base == 16 && c >= 'A' && c <= 'F':
		return true
	}
	return false
}

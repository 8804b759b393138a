package wire

import (
	"math/big"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
)

// etherDecimals is the scale between wei and ether.
const etherDecimals = 18

// FormatEther renders a wei amount as an ether decimal string with full
// precision and no trailing zeros: 1e18 -> "1", 1.5e18 -> "1.5".
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -etherDecimals).String()
}

// FormatDecimal renders n in base 10. A nil value renders as "0".
func FormatDecimal(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}

// FormatUint renders n in base 10.
func FormatUint(n uint64) string {
	return strconv.FormatUint(n, 10)
}

// EncodeHex renders b as a 0x-prefixed lowercase hex string.
func EncodeHex(b []byte) string {
	return hexutil.Encode(b)
}

// ByteArray marshals as a JSON array of byte values instead of the base64
// string encoding/json uses for []byte.
type ByteArray []byte

func (b ByteArray) MarshalJSON() ([]byte, error) {
	out := make([]byte, 0, 2+4*len(b))
	out = append(out, '[')
	for i, v := range b {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendUint(out, uint64(v), 10)
	}
	return append(out, ']'), nil
}

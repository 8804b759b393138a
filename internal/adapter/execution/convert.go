package execution

import (
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/entity"
)

var tagNumbers = map[entity.BlockTagKind]rpc.BlockNumber{
	entity.TagLatest:    rpc.LatestBlockNumber,
	entity.TagFinalized: rpc.FinalizedBlockNumber,
	entity.TagSafe:      rpc.SafeBlockNumber,
	entity.TagEarliest:  rpc.EarliestBlockNumber,
	entity.TagPending:   rpc.PendingBlockNumber,
}

// toBlockNumber maps a tag to the *big.Int form ethclient expects, where the
// named tags are the negative rpc.BlockNumber sentinels.
func toBlockNumber(tag entity.BlockTag) *big.Int {
	if tag.Kind == entity.TagNumber {
		return new(big.Int).SetUint64(tag.Number)
	}
	return big.NewInt(int64(tagNumbers[tag.Kind]))
}

// toBlockNumArg renders a tag as a raw JSON-RPC block parameter.
func toBlockNumArg(tag entity.BlockTag) string {
	if tag.Kind == entity.TagNumber {
		return hexutil.EncodeUint64(tag.Number)
	}
	return tagNumbers[tag.Kind].String()
}

func toCallMsg(opts *entity.CallOptions) ethereum.CallMsg {
	var msg ethereum.CallMsg
	if opts == nil {
		return msg
	}
	if opts.From != nil {
		msg.From = *opts.From
	}
	msg.To = opts.To
	msg.Gas = opts.Gas
	msg.GasPrice = opts.GasPrice
	msg.Value = opts.Value
	msg.Data = opts.Data
	return msg
}

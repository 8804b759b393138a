package execution

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/go-playground/validator/v10"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/entity"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/applog"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/pattern"
	"github.com/stretchr/testify/require"
)

const knownHash = "0x88e96d4537bea4d9c05d12549907b32561d3bf31f45aae734cdc119f13406cb6"

// upstreamAPI plays the light client's own JSON-RPC endpoint.
type upstreamAPI struct {
	mu   sync.Mutex
	tags []string
	sent []hexutil.Bytes
	call map[string]any
}

func (u *upstreamAPI) record(tag string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.tags = append(u.tags, tag)
}

func (u *upstreamAPI) ChainId() *hexutil.Big { return (*hexutil.Big)(big.NewInt(1)) }

func (u *upstreamAPI) BlockNumber() hexutil.Uint64 { return 19_000_000 }

func (u *upstreamAPI) Syncing() any { return false }

func (u *upstreamAPI) Coinbase() common.Address {
	return common.HexToAddress("0x95222290dd7278aa3ddd389cc1e1d165cc4bafe5")
}

func (u *upstreamAPI) GasPrice() *hexutil.Big { return (*hexutil.Big)(big.NewInt(12_000_000_000)) }

func (u *upstreamAPI) MaxPriorityFeePerGas() *hexutil.Big {
	return (*hexutil.Big)(big.NewInt(1_000_000_000))
}

func (u *upstreamAPI) GetBalance(_ common.Address, tag string) *hexutil.Big {
	u.record(tag)
	return (*hexutil.Big)(big.NewInt(1_500_000_000_000_000_000))
}

func (u *upstreamAPI) GetTransactionCount(_ common.Address, tag string) hexutil.Uint64 {
	u.record(tag)
	return 3
}

func (u *upstreamAPI) GetCode(_ common.Address, tag string) hexutil.Bytes {
	u.record(tag)
	return hexutil.Bytes{0x60, 0x80}
}

func (u *upstreamAPI) Call(args map[string]any, tag string) hexutil.Bytes {
	u.record(tag)
	u.mu.Lock()
	u.call = args
	u.mu.Unlock()
	return hexutil.Bytes{0xde, 0xad}
}

func (u *upstreamAPI) EstimateGas(map[string]any) hexutil.Uint64 { return 21000 }

func (u *upstreamAPI) SendRawTransaction(raw hexutil.Bytes) common.Hash {
	u.mu.Lock()
	u.sent = append(u.sent, raw)
	u.mu.Unlock()
	return common.HexToHash(knownHash)
}

func (u *upstreamAPI) GetBlockByHash(hash common.Hash, fullTx bool) json.RawMessage {
	if hash != common.HexToHash(knownHash) {
		return json.RawMessage("null")
	}
	return blockPayload(fullTx)
}

func (u *upstreamAPI) GetBlockByNumber(tag string, fullTx bool) json.RawMessage {
	u.record(tag)
	if tag == "pending" {
		return json.RawMessage("null")
	}
	return blockPayload(fullTx)
}

func (u *upstreamAPI) GetBlockTransactionCountByHash(hash common.Hash) *hexutil.Uint64 {
	if hash != common.HexToHash(knownHash) {
		return nil
	}
	n := hexutil.Uint64(2)
	return &n
}

func (u *upstreamAPI) GetBlockTransactionCountByNumber(tag string) *hexutil.Uint64 {
	u.record(tag)
	return nil
}

func blockPayload(fullTx bool) json.RawMessage {
	txs := `["0x0000000000000000000000000000000000000000000000000000000000000001"]`
	if fullTx {
		txs = `[{"hash":"0x0000000000000000000000000000000000000000000000000000000000000001","from":"0x95222290dd7278aa3ddd389cc1e1d165cc4bafe5","gas":"0x5208","gasPrice":"0x1","input":"0x","nonce":"0x0","to":null,"value":"0x0","type":"0x0","v":"0x1b","r":"0x1","s":"0x1","blockHash":null,"blockNumber":null,"transactionIndex":null}]`
	}
	return json.RawMessage(`{"hash":"` + knownHash + `","number":"0x10","difficulty":"0x0","gasLimit":"0x0","gasUsed":"0x0","timestamp":"0x0","extraData":"0x","size":"0x0","uncles":[],"transactions":` + txs + `}`)
}

func newTestClient(t *testing.T) (*Client, *upstreamAPI) {
	t.Helper()
	api := &upstreamAPI{}
	srv := rpc.NewServer()
	require.NoError(t, srv.RegisterName("eth", api))
	t.Cleanup(srv.Stop)

	c := NewClientFromRPC(applog.Nop{}, rpc.DialInProc(srv))
	t.Cleanup(c.Close)
	return c, api
}

func TestClient_ChainReads(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	id, err := c.ChainID(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)

	n, err := c.BlockNumber(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(19_000_000), n)

	progress, err := c.Syncing(ctx)
	require.NoError(t, err)
	require.Nil(t, progress)

	coinbase, err := c.Coinbase(ctx)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("0x95222290dd7278aa3ddd389cc1e1d165cc4bafe5"), coinbase)

	price, err := c.GasPrice(ctx)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(12_000_000_000), price)

	tip, err := c.PriorityFee(ctx)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(1_000_000_000), tip)
}

func TestClient_StateReadsPassTag(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()
	addr := common.HexToAddress("0x95222290dd7278aa3ddd389cc1e1d165cc4bafe5")

	bal, err := c.Balance(ctx, addr, entity.Latest)
	require.NoError(t, err)
	require.Equal(t, "1500000000000000000", bal.String())

	nonce, err := c.Nonce(ctx, addr, entity.Finalized)
	require.NoError(t, err)
	require.Equal(t, uint64(3), nonce)

	code, err := c.Code(ctx, addr, entity.ExactNumber(16))
	require.NoError(t, err)
	require.Equal(t, []byte{0x60, 0x80}, code)

	require.Equal(t, []string{"latest", "finalized", "0x10"}, api.tags)
}

func TestClient_Blocks(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	full, err := c.BlockByHash(ctx, common.HexToHash(knownHash), true)
	require.NoError(t, err)
	require.True(t, full.Transactions.IsFull())
	require.Len(t, full.Transactions.Bodies(), 1)
	require.Equal(t, uint64(0x5208), full.Transactions.Bodies()[0].Gas)

	hashes, err := c.BlockByNumber(ctx, entity.Safe, false)
	require.NoError(t, err)
	require.False(t, hashes.Transactions.IsFull())
	require.Equal(t, uint64(16), hashes.Header.Number)

	missing, err := c.BlockByHash(ctx, common.Hash{0x01}, false)
	require.NoError(t, err)
	require.Nil(t, missing)

	pending, err := c.BlockByNumber(ctx, entity.Pending, true)
	require.NoError(t, err)
	require.Nil(t, pending)

	require.Equal(t, []string{"safe", "pending"}, api.tags)
}

func TestClient_TransactionCounts(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	n, err := c.BlockTransactionCountByHash(ctx, common.HexToHash(knownHash))
	require.NoError(t, err)
	require.Equal(t, uint64(2), n)

	_, err = c.BlockTransactionCountByHash(ctx, common.Hash{0x02})
	require.ErrorIs(t, err, ethereum.NotFound)

	_, err = c.BlockTransactionCountByNumber(ctx, entity.Earliest)
	require.ErrorIs(t, err, ethereum.NotFound)
}

func TestClient_CallEstimateSend(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()
	to := common.HexToAddress("0x95222290dd7278aa3ddd389cc1e1d165cc4bafe5")
	opts := &entity.CallOptions{To: &to, Data: []byte{0x70, 0xa0, 0x82, 0x31}}

	out, err := c.Call(ctx, opts, entity.Latest)
	require.NoError(t, err)
	require.Equal(t, []byte{0xde, 0xad}, out)
	require.Equal(t, "0x95222290dd7278aa3ddd389cc1e1d165cc4bafe5", api.call["to"])

	gas, err := c.EstimateGas(ctx, opts)
	require.NoError(t, err)
	require.Equal(t, uint64(21000), gas)

	hash, err := c.SendRawTransaction(ctx, []byte{0xf8, 0x6b})
	require.NoError(t, err)
	require.Equal(t, common.HexToHash(knownHash), hash)
	require.Equal(t, []hexutil.Bytes{{0xf8, 0x6b}}, api.sent)
}

func TestClient_NotConnected(t *testing.T) {
	c, err := NewClient(applog.Nop{}, &Config{URL: "http://127.0.0.1:8545"}, validator.New())
	require.NoError(t, err)

	_, err = c.BlockNumber(context.Background())
	require.Error(t, err)
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(applog.Nop{}, &Config{URL: "not a url"}, validator.New())
	require.Error(t, err)

	_, err = NewClient(applog.Nop{}, &Config{URL: "ws://127.0.0.1:8546", DialRetryJitter: 2}, validator.New())
	require.Error(t, err)
}

func TestClient_ConnectRetries(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                  string
		attemptsBeforeSuccess int32
		ctxTimeout            time.Duration
		wantErr               bool
	}{
		{name: "succeeds_after_retries", attemptsBeforeSuccess: 3, ctxTimeout: 3 * time.Second},
		{name: "context_deadline", attemptsBeforeSuccess: 100, ctxTimeout: 50 * time.Millisecond, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := rpc.NewServer()
			require.NoError(t, srv.RegisterName("eth", &upstreamAPI{}))
			t.Cleanup(srv.Stop)

			c := &Client{
				log:           applog.Nop{},
				config:        &Config{URL: "ws://ignored"},
				dialRetryOpts: []pattern.RetryOption{pattern.WithInitialDelay(time.Millisecond), pattern.WithMaxDelay(5 * time.Millisecond)},
			}
			var attempts atomic.Int32
			c.newClient = func(context.Context) (*rpc.Client, error) {
				if attempts.Add(1) < tc.attemptsBeforeSuccess {
					return nil, errors.New("dial failed")
				}
				return rpc.DialInProc(srv), nil
			}

			ctx, cancel := context.WithTimeout(context.Background(), tc.ctxTimeout)
			defer cancel()

			err := c.Connect(ctx)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer c.Close()
			require.Equal(t, tc.attemptsBeforeSuccess, attempts.Load())

			n, err := c.BlockNumber(ctx)
			require.NoError(t, err)
			require.Equal(t, uint64(19_000_000), n)
		})
	}
}

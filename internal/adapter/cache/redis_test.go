package cache

import (
	"context"
	"math/big"
	"net"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/core/entity"
	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/applog"
	"github.com/stretchr/testify/require"
)

func runMiniRedis(t *testing.T) (*miniredis.Miniredis, string, string) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	host, port, _ := net.SplitHostPort(s.Addr())
	return s, host, port
}

func validRedisConfig(host, port string) *RedisConfig {
	return &RedisConfig{
		Host:               host,
		Port:               port,
		PoolSize:           2,
		MaxRetries:         1,
		DialTimeoutSeconds: 1,
		KeyPrefix:          "lightrpc:block",
		TTLSeconds:         60,
	}
}

func testBlock(full bool) *entity.Block {
	b := &entity.Block{
		Hash:   common.HexToHash("0x88e96d4537bea4d9c05d12549907b32561d3bf31f45aae734cdc119f13406cb6"),
		Header: entity.Header{Number: 42, GasLimit: 30_000_000, BaseFee: big.NewInt(7)},
	}
	if full {
		to := common.HexToAddress("0x95222290dd7278aa3ddd389cc1e1d165cc4bafe5")
		b.Transactions = entity.FullTransactions([]entity.Transaction{{
			Hash:     common.Hash{0x01},
			To:       &to,
			Value:    big.NewInt(5),
			GasPrice: big.NewInt(1),
			Gas:      21000,
		}})
	} else {
		b.Transactions = entity.HashTransactions([]common.Hash{{0x01}})
	}
	return b
}

func TestNewRedisBlockCache_Table(t *testing.T) {
	v := validator.New()
	_, host, port := runMiniRedis(t)

	tests := []struct {
		name    string
		cfg     *RedisConfig
		wantErr bool
	}{
		{name: "invalid_config", cfg: &RedisConfig{}, wantErr: true},
		{name: "missing_prefix", cfg: &RedisConfig{Host: host, Port: port}, wantErr: true},
		{name: "valid_config", cfg: validRedisConfig(host, port)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewRedisBlockCache(applog.Nop{}, v, tc.cfg)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NoError(t, c.Ping(context.Background()))
			require.NoError(t, c.Close())
		})
	}
}

func TestRedisBlockCache_RoundTrip(t *testing.T) {
	s, host, port := runMiniRedis(t)
	c, err := NewRedisBlockCache(applog.Nop{}, validator.New(), validRedisConfig(host, port))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	full := testBlock(true)
	_, ok, err := c.GetBlock(ctx, full.Hash, true)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.PutBlock(ctx, full, true))
	require.True(t, s.Exists("lightrpc:block:"+full.Hash.Hex()+":full"))
	require.Equal(t, 60*time.Second, s.TTL("lightrpc:block:"+full.Hash.Hex()+":full"))

	got, ok, err := c.GetBlock(ctx, full.Hash, true)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, full.Hash, got.Hash)
	require.Equal(t, uint64(42), got.Header.Number)
	require.True(t, got.Transactions.IsFull())
	require.Equal(t, uint64(21000), got.Transactions.Bodies()[0].Gas)

	// The other representation is a separate entry.
	_, ok, err = c.GetBlock(ctx, full.Hash, false)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.PutBlock(ctx, testBlock(false), false))
	got, ok, err = c.GetBlock(ctx, full.Hash, false)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, got.Transactions.IsFull())
	require.Equal(t, []common.Hash{{0x01}}, got.Transactions.Hashes())
}

func TestRedisBlockCache_EmptyFullBlockKeepsRepresentation(t *testing.T) {
	_, host, port := runMiniRedis(t)
	c, err := NewRedisBlockCache(applog.Nop{}, validator.New(), validRedisConfig(host, port))
	require.NoError(t, err)
	ctx := context.Background()

	b := &entity.Block{Hash: common.Hash{0xaa}, Transactions: entity.FullTransactions(nil)}
	require.NoError(t, c.PutBlock(ctx, b, true))

	got, ok, err := c.GetBlock(ctx, b.Hash, true)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, got.Transactions.IsFull())
	require.Zero(t, got.Transactions.Len())
}

func TestRedisBlockCache_CorruptEntryIsAMiss(t *testing.T) {
	s, host, port := runMiniRedis(t)
	c, err := NewRedisBlockCache(applog.Nop{}, validator.New(), validRedisConfig(host, port))
	require.NoError(t, err)

	hash := common.Hash{0xbb}
	key := "lightrpc:block:" + hash.Hex() + ":hashes"
	require.NoError(t, s.Set(key, "{not json"))

	_, ok, err := c.GetBlock(context.Background(), hash, false)
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, s.Exists(key))
}

func TestRedisBlockCache_ServerDown(t *testing.T) {
	s, host, port := runMiniRedis(t)
	c, err := NewRedisBlockCache(applog.Nop{}, validator.New(), validRedisConfig(host, port))
	require.NoError(t, err)
	s.Close()

	_, _, err = c.GetBlock(context.Background(), common.Hash{0x01}, true)
	require.Error(t, err)
	require.Error(t, c.PutBlock(context.Background(), testBlock(true), true))
}

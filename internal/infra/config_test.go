package infra

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pancudaniel7/lightclient-rpc-service/internal/pkg/applog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestInitConfig_FileAndEnv(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: "0.0.0.0:9000"
ethereum:
  execution_rpc_url: "http://127.0.0.1:8545"
cache:
  backend: memory
`), 0o600))
	t.Setenv("LIGHTRPC_CACHE_SIZE", "64")

	require.NoError(t, InitConfig(path))
	require.Equal(t, "0.0.0.0:9000", viper.GetString("http.addr"))
	require.Equal(t, "http://127.0.0.1:8545", viper.GetString("ethereum.execution_rpc_url"))
	require.Equal(t, CacheBackendMemory, viper.GetString("cache.backend"))
	require.Equal(t, 64, viper.GetInt("cache.size"))
	require.Equal(t, 30, viper.GetInt("rpc.call_timeout_seconds"))
}

func TestInitConfig_MissingExplicitFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	require.Error(t, InitConfig(filepath.Join(t.TempDir(), "absent.yml")))
}

func TestInitBlockCache_Backends(t *testing.T) {
	cases := []struct {
		name    string
		backend string
		wantNil bool
		wantErr bool
	}{
		{name: "none", backend: CacheBackendNone, wantNil: true},
		{name: "memory", backend: CacheBackendMemory},
		{name: "unknown", backend: "memcached", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			viper.Set("cache.backend", tc.backend)
			viper.Set("cache.size", 8)

			c, cleanup, err := InitBlockCache(t.Context(), applog.Nop{}, nil)
			require.NotNil(t, cleanup)
			defer cleanup()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tc.wantNil {
				require.Nil(t, c)
			} else {
				require.NotNil(t, c)
			}
		})
	}
}

package kv_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/wazazi/core"
	"github.com/trezcool/wazazi/storage/kv"
)

func backends(t *testing.T) map[string]core.StorageConfig {
	confs := map[string]core.StorageConfig{
		"memory": {Engine: kv.EngineMemory},
		"file":   {Engine: kv.EngineFile, Dir: t.TempDir()},
		"sqlite": {Engine: kv.EngineSQL, Driver: "sqlite", DSN: ":memory:"},
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		confs["redis"] = core.StorageConfig{Engine: kv.EngineRedis, RedisAddr: addr, RedisDB: 15}
	}
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		confs["postgres"] = core.StorageConfig{Engine: kv.EngineSQL, Driver: "postgres", DSN: dsn}
	}
	return confs
}

func TestStores(t *testing.T) {
	ctx := context.Background()

	for name, conf := range backends(t) {
		conf := conf
		t.Run(name, func(t *testing.T) {
			store, err := kv.Open(ctx, conf)
			require.NoError(t, err)
			defer func() { assert.NoError(t, store.Close()) }()

			key := "test_" + name
			_ = store.Delete(ctx, key)

			_, err = store.Get(ctx, key)
			assert.ErrorIs(t, err, core.ErrKeyNotFound)

			require.NoError(t, store.Put(ctx, key, []byte(`[{"id":"1"}]`)))
			got, err := store.Get(ctx, key)
			require.NoError(t, err)
			assert.JSONEq(t, `[{"id":"1"}]`, string(got))

			require.NoError(t, store.Put(ctx, key, []byte(`[]`)))
			got, err = store.Get(ctx, key)
			require.NoError(t, err)
			assert.Equal(t, "[]", string(got))

			require.NoError(t, store.Delete(ctx, key))
			_, err = store.Get(ctx, key)
			assert.ErrorIs(t, err, core.ErrKeyNotFound)

			assert.NoError(t, store.Delete(ctx, key), "deleting a missing key")
		})
	}
}

func TestOpen_UnknownEngine(t *testing.T) {
	_, err := kv.Open(context.Background(), core.StorageConfig{Engine: "floppy"})
	assert.EqualError(t, err, `unknown storage engine "floppy"`)
}

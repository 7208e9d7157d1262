// Package kv opens the persistence backend selected by the configuration.
package kv

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/wazazi/core"
	"github.com/trezcool/wazazi/storage/kv/filekv"
	"github.com/trezcool/wazazi/storage/kv/memkv"
	"github.com/trezcool/wazazi/storage/kv/rediskv"
	"github.com/trezcool/wazazi/storage/kv/sqlkv"
)

const (
	EngineMemory = "memory"
	EngineFile   = "file"
	EngineSQL    = "sql"
	EngineRedis  = "redis"
)

func Open(ctx context.Context, conf core.StorageConfig) (core.KVStore, error) {
	switch conf.Engine {
	case EngineMemory:
		return memkv.New(), nil
	case EngineFile:
		return filekv.Open(conf.Dir)
	case EngineSQL:
		return sqlkv.Open(ctx, conf.Driver, conf.DSN)
	case EngineRedis:
		return rediskv.Open(ctx, conf.RedisAddr, conf.RedisDB)
	default:
		return nil, errors.Errorf("unknown storage engine %q", conf.Engine)
	}
}

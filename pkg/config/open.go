package config

import (
	"context"

	"github.com/flowpane/flowpane/pkg/cache"
)

// Open builds the cache backend the config names. The none backend is a
// working cache that stores nothing, so callers never branch on nil.
func (c CacheConfig) Open(ctx context.Context) (cache.Cache, error) {
	switch c.Backend {
	case "", BackendNone:
		return cache.NewNullCache(), nil
	case BackendFile:
		dir, err := c.FileDir()
		if err != nil {
			return nil, err
		}
		return cache.NewFileCache(dir)
	case BackendRedis:
		return cache.NewRedisCache(ctx, c.RedisAddr)
	case BackendMongo:
		db := c.MongoDatabase
		if db == "" {
			db = "flowpane"
		}
		coll := c.MongoCollection
		if coll == "" {
			coll = "layouts"
		}
		return cache.NewMongoCache(ctx, c.MongoURI, db, coll)
	}
	// validate rejects anything else before we get here.
	return cache.NewNullCache(), nil
}

package database

import (
	"context"
	"fmt"
	"time"

	"cronify/config"
	"cronify/internal/logger"

	"github.com/valkey-io/valkey-go"
)

// Valkey database indexes. Each cache category gets its own logical DB.
const (
	// GENERAL_CACHE_INDEX (DB 0) holds anything without a dedicated index
	GENERAL_CACHE_INDEX = iota

	// SESSION_CACHE_INDEX (DB 1) holds login sessions and per-user session sets
	SESSION_CACHE_INDEX

	// USER_CACHE_INDEX (DB 2) holds user profiles and settings
	USER_CACHE_INDEX

	// EVENTS_CACHE_INDEX (DB 3) is the pub/sub connection for the event bus
	EVENTS_CACHE_INDEX

	// HABIT_CACHE_INDEX (DB 4) holds habit lists and per-habit log lists
	HABIT_CACHE_INDEX
)

func newCacheClient(address string, port int, index int) (CacheClient, error) {
	return valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{fmt.Sprintf("%s:%d", address, port)},
		SelectDB:    index,
	})
}

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")
	log.Info("initializing cache database")

	address := config.DatabaseCacheAddress
	port := config.DatabaseCachePort
	if address == "" || port == 0 {
		return log.Errorf("failed to initialize cache database", "address or port is empty")
	}

	clients := []struct {
		target *CacheClient
		index  int
		name   string
	}{
		{&s.Cache.General, GENERAL_CACHE_INDEX, "general"},
		{&s.Cache.Session, SESSION_CACHE_INDEX, "session"},
		{&s.Cache.User, USER_CACHE_INDEX, "user"},
		{&s.Cache.Events, EVENTS_CACHE_INDEX, "events"},
		{&s.Cache.Habit, HABIT_CACHE_INDEX, "habit"},
	}

	for _, c := range clients {
		client, err := newCacheClient(address, port, c.index)
		if err != nil {
			return log.Err("failed to create valkey client", err, "cache", c.name)
		}
		*c.target = client
	}

	if config.DatabaseCacheReset != -1 {
		go clearCacheDB(config.DatabaseCacheReset, s.Cache)
	}

	return nil
}

func cacheByIndex(index int, cacheDB Cache) (CacheClient, string, bool) {
	switch index {
	case GENERAL_CACHE_INDEX:
		return cacheDB.General, "General", true
	case SESSION_CACHE_INDEX:
		return cacheDB.Session, "Session", true
	case USER_CACHE_INDEX:
		return cacheDB.User, "User", true
	case EVENTS_CACHE_INDEX:
		return cacheDB.Events, "Events", true
	case HABIT_CACHE_INDEX:
		return cacheDB.Habit, "Habit", true
	default:
		return nil, "", false
	}
}

func clearCacheDB(index int, cacheDB Cache) {
	log := logger.New("database").File("cache.database").Function("clearCacheDB")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, dbName, ok := cacheByIndex(index, cacheDB)
	if !ok || client == nil {
		log.Warn("Invalid cache database index", "index", index)
		return
	}

	if err := client.Do(ctx, client.B().Flushdb().Build()).Error(); err != nil {
		log.Er("Failed to clear cache database", err, "index", index, "dbName", dbName)
		return
	}

	log.Info("Successfully cleared cache database", "index", index, "dbName", dbName)
}

package services

import (
	"context"
	"time"

	"cronify/internal/constants"
	"cronify/internal/database"

	"github.com/google/uuid"
)

// SessionStore tracks live login sessions so a JWT can be revoked before it
// expires.
type SessionStore interface {
	Save(ctx context.Context, sessionID string, userID uuid.UUID, ttl time.Duration) error
	Lookup(ctx context.Context, sessionID string) (uuid.UUID, bool, error)
	Delete(ctx context.Context, sessionID string, userID uuid.UUID) error
	DeleteAll(ctx context.Context, userID uuid.UUID) error
}

type cacheSessionStore struct {
	cache database.CacheClient
}

func NewSessionStore(cache database.CacheClient) SessionStore {
	return &cacheSessionStore{cache: cache}
}

func (s *cacheSessionStore) Save(
	ctx context.Context,
	sessionID string,
	userID uuid.UUID,
	ttl time.Duration,
) error {
	if err := database.NewCacheBuilder(s.cache, sessionID).
		WithContext(ctx).
		WithHash(constants.SessionCachePrefix).
		WithStruct(userID.String()).
		WithTTL(ttl).
		Set(); err != nil {
		return err
	}

	return database.NewCacheBuilder(s.cache, userID).
		WithContext(ctx).
		WithHash(constants.UserSessionsCachePrefix).
		WithMember(sessionID).
		WithTTL(ttl).
		SetSadd()
}

func (s *cacheSessionStore) Lookup(ctx context.Context, sessionID string) (uuid.UUID, bool, error) {
	var raw string
	found, err := database.NewCacheBuilder(s.cache, sessionID).
		WithContext(ctx).
		WithHash(constants.SessionCachePrefix).
		Get(&raw)
	if err != nil || !found {
		return uuid.Nil, false, err
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, err
	}
	return userID, true, nil
}

func (s *cacheSessionStore) Delete(ctx context.Context, sessionID string, userID uuid.UUID) error {
	if err := database.NewCacheBuilder(s.cache, sessionID).
		WithContext(ctx).
		WithHash(constants.SessionCachePrefix).
		Delete(); err != nil {
		return err
	}

	return database.NewCacheBuilder(s.cache, userID).
		WithContext(ctx).
		WithHash(constants.UserSessionsCachePrefix).
		WithMember(sessionID).
		RemoveSetMember()
}

func (s *cacheSessionStore) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	sessions, err := database.NewCacheBuilder(s.cache, userID).
		WithContext(ctx).
		WithHash(constants.UserSessionsCachePrefix).
		GetSetMembers()
	if err != nil {
		return err
	}

	for _, sessionID := range sessions {
		if err := database.NewCacheBuilder(s.cache, sessionID).
			WithContext(ctx).
			WithHash(constants.SessionCachePrefix).
			Delete(); err != nil {
			return err
		}
	}

	return database.NewCacheBuilder(s.cache, userID).
		WithContext(ctx).
		WithHash(constants.UserSessionsCachePrefix).
		Delete()
}

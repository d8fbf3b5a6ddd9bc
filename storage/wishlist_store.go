package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisWishlistStore keeps one Redis set of vehicle ids per user.
type RedisWishlistStore struct {
	client *redis.Client
}

func NewRedisWishlistStore(client *redis.Client) *RedisWishlistStore {
	return &RedisWishlistStore{client: client}
}

func wishlistKey(userID string) string {
	return "wishlist:" + userID
}

func (s *RedisWishlistStore) List(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, wishlistKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("wishlist: members: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *RedisWishlistStore) Contains(ctx context.Context, userID, vehicleID string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, wishlistKey(userID), vehicleID).Result()
	if err != nil {
		return false, fmt.Errorf("wishlist: is member: %w", err)
	}
	return ok, nil
}

func (s *RedisWishlistStore) Add(ctx context.Context, userID, vehicleID string) error {
	if err := s.client.SAdd(ctx, wishlistKey(userID), vehicleID).Err(); err != nil {
		return fmt.Errorf("wishlist: add: %w", err)
	}
	return nil
}

func (s *RedisWishlistStore) Remove(ctx context.Context, userID, vehicleID string) error {
	if err := s.client.SRem(ctx, wishlistKey(userID), vehicleID).Err(); err != nil {
		return fmt.Errorf("wishlist: remove: %w", err)
	}
	return nil
}

// MemoryWishlistStore is the in-process WishlistStore.
type MemoryWishlistStore struct {
	mu    sync.RWMutex
	items map[string]map[string]struct{}
}

func NewMemoryWishlistStore() *MemoryWishlistStore {
	return &MemoryWishlistStore{items: make(map[string]map[string]struct{})}
}

func (s *MemoryWishlistStore) List(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.items[userID]))
	for id := range s.items[userID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryWishlistStore) Contains(_ context.Context, userID, vehicleID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[userID][vehicleID]
	return ok, nil
}

func (s *MemoryWishlistStore) Add(_ context.Context, userID, vehicleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.items[userID]
	if !ok {
		set = make(map[string]struct{})
		s.items[userID] = set
	}
	set[vehicleID] = struct{}{}
	return nil
}

func (s *MemoryWishlistStore) Remove(_ context.Context, userID, vehicleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items[userID], vehicleID)
	return nil
}

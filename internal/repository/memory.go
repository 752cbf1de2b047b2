package repository

import (
	"context"
	"sync"
	"time"

	"cabinbook/internal/models"
)

type MemoryIdentityRepository struct {
	records    sync.Map
	rateMu     sync.Mutex
	rateLimits map[string]*rateLimitEntry
	ttl        time.Duration
}

func NewMemoryIdentityRepository(ttl time.Duration) *MemoryIdentityRepository {
	return &MemoryIdentityRepository{
		rateLimits: make(map[string]*rateLimitEntry),
		ttl:        ttl,
	}
}

func (r *MemoryIdentityRepository) GetIdentity(ctx context.Context, deviceID string) (*models.GuestRecord, error) {
	val, ok := r.records.Load(deviceID)
	if !ok {
		return nil, nil
	}
	return val.(*models.GuestRecord), nil
}

func (r *MemoryIdentityRepository) SetIdentity(ctx context.Context, deviceID string, record *models.GuestRecord) error {
	r.records.Store(deviceID, record)
	return nil
}

func (r *MemoryIdentityRepository) ClearIdentity(ctx context.Context, deviceID string) error {
	r.records.Delete(deviceID)
	return nil
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func (r *MemoryIdentityRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	r.rateMu.Lock()
	defer r.rateMu.Unlock()

	now := time.Now()
	entry, ok := r.rateLimits[key]
	if !ok || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
		r.rateLimits[key] = entry
	} else {
		entry.count++
	}

	return entry.count <= limit, nil
}

package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pitabwire/frame/datastore/pool"
)

// Repository provides persistence for people and gifts. Every operation is
// scoped to the owning profile.
type Repository struct {
	pool pool.Pool
}

// NewRepository creates a repository over the given datastore pool.
func NewRepository(pool pool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) db(ctx context.Context, readOnly bool) *gorm.DB {
	return r.pool.DB(ctx, readOnly)
}

// FindOrCreatePerson looks up a person by exact name within a profile's
// scope, creating a name-only record when absent. Concurrent identical calls
// are left to the store's uniqueness guarantees.
func (r *Repository) FindOrCreatePerson(ctx context.Context, profileID, name string) (*Person, error) {
	var p Person
	err := r.db(ctx, true).
		Where("profile_id = ? AND name = ?", profileID, name).
		First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, persistErr("find person", err)
	}

	p = Person{ProfileID: profileID, Name: name}
	if err := r.db(ctx, false).Create(&p).Error; err != nil {
		return nil, persistErr("create person", err)
	}
	return &p, nil
}

// CreatePerson persists a fully collected person record.
func (r *Repository) CreatePerson(ctx context.Context, profileID string, payload PersonPayload) (*Person, error) {
	p := Person{
		ProfileID:    profileID,
		Name:         payload.Name,
		Relationship: payload.Relationship,
		Birthday:     payload.Birthday,
	}
	if err := r.db(ctx, false).Create(&p).Error; err != nil {
		return nil, persistErr("create person", err)
	}
	return &p, nil
}

// CreateGift persists a new gift record in the initial not-started status.
func (r *Repository) CreateGift(ctx context.Context, profileID string, payload GiftPayload) (*Gift, error) {
	g := Gift{
		ProfileID:   profileID,
		RecipientID: payload.RecipientID,
		EventType:   payload.EventType,
		EventDate:   payload.EventDate,
		AmountTier:  payload.AmountTier,
		GiftMessage: payload.Message,
		Status:      GiftStatusNotStarted,
	}
	if err := r.db(ctx, false).Create(&g).Error; err != nil {
		return nil, persistErr("create gift", err)
	}
	return &g, nil
}

// ListPeople returns a profile's people, newest first.
func (r *Repository) ListPeople(ctx context.Context, profileID string) ([]Person, error) {
	var people []Person
	err := r.db(ctx, true).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&people).Error
	if err != nil {
		return nil, persistErr("list people", err)
	}
	return people, nil
}

// ListGifts returns a profile's gifts, newest first.
func (r *Repository) ListGifts(ctx context.Context, profileID string) ([]Gift, error) {
	var gifts []Gift
	err := r.db(ctx, true).
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&gifts).Error
	if err != nil {
		return nil, persistErr("list gifts", err)
	}
	return gifts, nil
}

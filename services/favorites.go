package services

import (
	"context"
	"errors"
	"fmt"

	"vehicle-market/models"
	"vehicle-market/storage"
	"vehicle-market/utils"
)

// ErrNotAuthenticated is returned when a wishlist mutation has no user.
var ErrNotAuthenticated = errors.New("not authenticated")

// ApplyFavorites returns a copy of vehicles with IsFavorited set from the
// favorites set. It runs after filtering; a nil set clears every flag.
func ApplyFavorites(vehicles []models.Vehicle, favorites *utils.IDSet) []models.Vehicle {
	out := make([]models.Vehicle, len(vehicles))
	for i, v := range vehicles {
		v.IsFavorited = favorites != nil && favorites.Contains(v.ID)
		out[i] = v
	}
	return out
}

// FavoritesService merges a user's wishlist onto search results.
type FavoritesService struct {
	store  storage.WishlistStore
	logger *utils.Logger
}

func NewFavoritesService(store storage.WishlistStore, logger *utils.Logger) *FavoritesService {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &FavoritesService{store: store, logger: logger}
}

// Favorites loads the user's wishlist as a set. An anonymous user has an
// empty wishlist.
func (s *FavoritesService) Favorites(ctx context.Context, userID string) (*utils.IDSet, error) {
	if userID == "" {
		return utils.NewIDSet(), nil
	}
	ids, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("favorites: list for %s: %w", userID, err)
	}
	return utils.NewIDSet(ids...), nil
}

// Overlay loads the wishlist and applies it to vehicles. When the wishlist
// cannot be loaded the vehicles are returned unflagged and the error is logged.
func (s *FavoritesService) Overlay(ctx context.Context, userID string, vehicles []models.Vehicle) []models.Vehicle {
	set, err := s.Favorites(ctx, userID)
	if err != nil {
		s.logger.Warn("[favorites] %v", err)
		set = nil
	}
	return ApplyFavorites(vehicles, set)
}

func (s *FavoritesService) Add(ctx context.Context, userID, vehicleID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if err := s.store.Add(ctx, userID, vehicleID); err != nil {
		return fmt.Errorf("favorites: add %s: %w", vehicleID, err)
	}
	s.logger.Debug("[favorites] %s added %s", userID, vehicleID)
	return nil
}

func (s *FavoritesService) Remove(ctx context.Context, userID, vehicleID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	if err := s.store.Remove(ctx, userID, vehicleID); err != nil {
		return fmt.Errorf("favorites: remove %s: %w", vehicleID, err)
	}
	s.logger.Debug("[favorites] %s removed %s", userID, vehicleID)
	return nil
}

// Toggle flips the wishlist membership and reports the new state.
func (s *FavoritesService) Toggle(ctx context.Context, userID, vehicleID string) (bool, error) {
	if userID == "" {
		return false, ErrNotAuthenticated
	}
	on, err := s.store.Contains(ctx, userID, vehicleID)
	if err != nil {
		return false, fmt.Errorf("favorites: lookup %s: %w", vehicleID, err)
	}
	if on {
		return false, s.Remove(ctx, userID, vehicleID)
	}
	return true, s.Add(ctx, userID, vehicleID)
}

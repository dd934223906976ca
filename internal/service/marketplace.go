package service

import (
	"context"
	"fmt"
	"time"

	"lendlocal-backend/internal/availability"
	"lendlocal-backend/internal/domain"
	"lendlocal-backend/internal/geo"
	"lendlocal-backend/internal/lifecycle"
	"lendlocal-backend/internal/logger"
	"lendlocal-backend/internal/repository"
	"lendlocal-backend/internal/utils"
)

type marketplaceService struct {
	store repository.Store
	now   func() time.Time
}

func NewMarketplaceService(store repository.Store, opts ...Option) MarketplaceService {
	o := buildOptions(opts)
	return &marketplaceService{store: store, now: o.now}
}

// ListItem maps onto listItem.
func (s *marketplaceService) ListItem(ctx context.Context, lenderID string, details lifecycle.ItemDetails) (*domain.Item, error) {
	if _, err := s.store.Users().GetByID(ctx, lenderID); err != nil {
		return nil, fmt.Errorf("lender %s: %w", lenderID, err)
	}
	item, err := lifecycle.ListItem(lenderID, details, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.Items().Create(ctx, &item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	logger.Info("Item listed", "itemID", item.ID, "lenderID", lenderID, "category", item.Category)
	return &item, nil
}

func (s *marketplaceService) UpdateItem(ctx context.Context, actorID, itemID string, details lifecycle.ItemDetails) (*domain.Item, error) {
	var updated domain.Item
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		item, err := tx.Items().GetByID(ctx, itemID)
		if err != nil {
			return err
		}
		updated, err = lifecycle.UpdateItem(*item, actorID, details, s.now())
		if err != nil {
			return err
		}
		return tx.Items().Update(ctx, &updated)
	})
	if err != nil {
		return nil, fmt.Errorf("update item %s: %w", itemID, err)
	}
	return &updated, nil
}

func (s *marketplaceService) GetItem(ctx context.Context, itemID string) (*domain.Item, error) {
	return s.store.Items().GetByID(ctx, itemID)
}

// Browse searches the current item snapshot and orders it by distance.
func (s *marketplaceService) Browse(ctx context.Context, query, category string, origin *geo.Point) ([]availability.Listing, error) {
	items, err := s.store.Items().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return availability.Browse(items, query, category, origin), nil
}

// Quote prices a prospective loan at the item's current daily fee.
func (s *marketplaceService) Quote(ctx context.Context, itemID string, start, end time.Time) (utils.FeeQuote, error) {
	item, err := s.store.Items().GetByID(ctx, itemID)
	if err != nil {
		return utils.FeeQuote{}, err
	}
	return utils.QuoteFee(item.BorrowingFeePerDay, start, end)
}

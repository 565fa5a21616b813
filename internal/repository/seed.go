package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/hotel-booking/internal/model"
)

// seedBatch describes one block of identical rooms in the initial
// inventory.  Numbers are generated as prefix + zero-padded index.
type seedBatch struct {
	prefix      string
	count       int
	category    model.RoomCategory
	priceCents  uint32
	capacity    uint32
	description string
}

var initialInventory = []seedBatch{
	{"E", 20, model.CategoryEconomy, 200000, 2, "Budget room"},
	{"S", 70, model.CategoryStandard, 350000, 2, "Standard room"},
	{"B", 20, model.CategoryBusiness, 600000, 3, "Business class"},
	{"V", 10, model.CategoryVIP, 1200000, 4, "VIP apartment"},
}

// SeedInitialRooms populates the catalog with the default inventory when
// the rooms table is empty.  Calling it against a non-empty catalog is a
// no-op, so it is safe to run on every startup.
func (r *RoomRepo) SeedInitialRooms(ctx context.Context) error {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, batch := range initialInventory {
		for i := 1; i <= batch.count; i++ {
			rm := &model.Room{
				Number:      fmt.Sprintf("%s%03d", batch.prefix, i),
				Name:        fmt.Sprintf("Room %s%03d", batch.prefix, i),
				Category:    batch.category,
				PriceCents:  batch.priceCents,
				Capacity:    batch.capacity,
				Description: batch.description,
			}
			if err := r.Create(ctx, rm); err != nil {
				return fmt.Errorf("seed room %s: %w", rm.Number, err)
			}
		}
	}
	return nil
}

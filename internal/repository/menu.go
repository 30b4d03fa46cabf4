package repository

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Payphone-Digital/midas/internal/constants"
	"github.com/Payphone-Digital/midas/internal/model"
	ctxutil "github.com/Payphone-Digital/midas/pkg/context"
	"github.com/Payphone-Digital/midas/pkg/logger"
	"github.com/Payphone-Digital/midas/pkg/store"
)

//go:embed default_menu.json
var defaultMenu []byte

// MenuRecord is one stored menu entry. It decodes from an object
// {name, price, type, photoId, photoQuery} or from the compact array form
// [name, price, type, photoId | {"query": q}].
type MenuRecord struct {
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Type       string  `json:"type"`
	PhotoID    string  `json:"photoId,omitempty"`
	PhotoQuery string  `json:"photoQuery,omitempty"`
}

func (r *MenuRecord) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return r.decodeArray(data)
	}

	type plain MenuRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = MenuRecord(p)
	return nil
}

func (r *MenuRecord) decodeArray(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	if len(parts) < 3 {
		return fmt.Errorf("menu entry needs name, price and type, got %d fields", len(parts))
	}

	var rec MenuRecord
	if err := json.Unmarshal(parts[0], &rec.Name); err != nil {
		return fmt.Errorf("menu entry name: %w", err)
	}
	if err := json.Unmarshal(parts[1], &rec.Price); err != nil {
		return fmt.Errorf("menu entry %s price: %w", rec.Name, err)
	}
	if err := json.Unmarshal(parts[2], &rec.Type); err != nil {
		return fmt.Errorf("menu entry %s type: %w", rec.Name, err)
	}

	if len(parts) > 3 {
		photo := bytes.TrimSpace(parts[3])
		switch {
		case len(photo) > 0 && photo[0] == '{':
			var q struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal(photo, &q); err != nil {
				return fmt.Errorf("menu entry %s photo query: %w", rec.Name, err)
			}
			rec.PhotoQuery = q.Query
		case !bytes.Equal(photo, []byte("null")):
			if err := json.Unmarshal(photo, &rec.PhotoID); err != nil {
				return fmt.Errorf("menu entry %s photo id: %w", rec.Name, err)
			}
		}
	}

	*r = rec
	return nil
}

type MenuRepository struct {
	store store.Store
}

func NewMenuRepository(s store.Store) *MenuRepository {
	return &MenuRepository{store: s}
}

// Load reads the menu document and converts it to an immutable Menu.
func (r *MenuRepository) Load(ctx context.Context) (model.Menu, error) {
	var records []MenuRecord
	if err := r.store.Read(ctx, constants.CollectionMenu, constants.MenuDocumentKey, &records); err != nil {
		return model.Menu{}, err
	}
	return toMenu(records)
}

// Seed writes the built-in menu when no menu document exists yet.
func (r *MenuRepository) Seed(ctx context.Context) error {
	ctx = ctxutil.NewContextWithRequest(ctx, "repository", "MenuRepository.Seed")

	var records []MenuRecord
	if err := json.Unmarshal(defaultMenu, &records); err != nil {
		return fmt.Errorf("default menu: %w", err)
	}
	if _, err := toMenu(records); err != nil {
		return fmt.Errorf("default menu: %w", err)
	}

	err := r.store.Create(ctx, constants.CollectionMenu, constants.MenuDocumentKey, records)
	if errors.Is(err, store.ErrExists) {
		logger.DebugWithContext(ctx, "Menu already present, skipping seed").Log()
		return nil
	}
	if err != nil {
		return err
	}

	logger.InfoWithContext(ctx, "Seeded default menu").Int("items", len(records)).Log()
	return nil
}

func toMenu(records []MenuRecord) (model.Menu, error) {
	items := make([]model.MenuItem, 0, len(records))
	for _, rec := range records {
		items = append(items, model.MenuItem{
			Name:       rec.Name,
			Price:      model.FromMajor(rec.Price),
			Type:       rec.Type,
			PhotoID:    rec.PhotoID,
			PhotoQuery: rec.PhotoQuery,
		})
	}
	return model.NewMenu(items)
}

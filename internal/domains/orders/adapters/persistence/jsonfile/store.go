// Package jsonfile mirrors the order mapping into a single JSON document.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/domain"
	"github.com/Apurer/discord-order-bot/internal/domains/orders/ports"
)

// DefaultPath is where the bot keeps its orders when nothing else is configured.
const DefaultPath = "/app/data/orders.json"

var _ ports.SnapshotStore = (*Store)(nil)

// Store rewrites the whole file on every save. There is no locking and no
// atomic rename; a crash mid-write can truncate the file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	if path == "" {
		path = DefaultPath
	}
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// orderRecord is the on-disk shape of one order.
type orderRecord struct {
	OrderID   string  `json:"orderId"`
	Claimed   bool    `json:"claimed"`
	ClaimedBy *string `json:"claimedBy"`
	MessageID string  `json:"messageId"`
	ChannelID string  `json:"channelId"`
	OrderName string  `json:"orderName"`
	Amount    int64   `json:"amount"`
}

// Load reads the file. A missing file is an empty mapping; a broken one is an
// empty mapping plus the error.
func (s *Store) Load(_ context.Context) ([]*domain.Order, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	orders, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return orders, nil
}

func (s *Store) Save(_ context.Context, orders []*domain.Order) error {
	raw, err := Encode(orders)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// Encode renders orders as the persisted JSON object keyed by order id.
func Encode(orders []*domain.Order) ([]byte, error) {
	records := make(map[string]orderRecord, len(orders))
	for _, order := range orders {
		if order == nil {
			continue
		}
		records[string(order.ID)] = toRecord(order)
	}
	return json.MarshalIndent(records, "", "  ")
}

// Decode parses the persisted JSON object. Orders come back sorted by id.
func Decode(raw []byte) ([]*domain.Order, error) {
	var records map[string]orderRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for key, record := range records {
		if record.OrderID == "" {
			record.OrderID = key
		}
		orders = append(orders, record.toDomain())
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

func toRecord(order *domain.Order) orderRecord {
	rec := orderRecord{
		OrderID:   string(order.ID),
		Claimed:   order.Claimed,
		MessageID: order.Message.MessageID,
		ChannelID: order.Message.ChannelID,
		OrderName: order.Name,
		Amount:    order.Amount,
	}
	if order.ClaimedBy != "" {
		claimedBy := order.ClaimedBy
		rec.ClaimedBy = &claimedBy
	}
	return rec
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:      domain.ID(r.OrderID),
		Name:    r.OrderName,
		Amount:  r.Amount,
		Claimed: r.Claimed,
		Message: domain.MessageRef{ChannelID: r.ChannelID, MessageID: r.MessageID},
	}
	if r.ClaimedBy != nil {
		order.ClaimedBy = *r.ClaimedBy
	}
	return order
}

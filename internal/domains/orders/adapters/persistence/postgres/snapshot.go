package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Apurer/discord-order-bot/internal/domains/orders/domain"
	"github.com/Apurer/discord-order-bot/internal/domains/orders/ports"
)

var _ ports.SnapshotStore = (*SnapshotStore)(nil)

const saveBatchSize = 200

// SnapshotStore mirrors the order mapping into PostgreSQL using GORM.
type SnapshotStore struct {
	db *gorm.DB
}

// NewSnapshotStore wires a PostgreSQL-backed snapshot store. Caller manages DB lifecycle.
func NewSnapshotStore(db *gorm.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// orderRecord maps the order aggregate to a relational table.
type orderRecord struct {
	OrderID   string  `gorm:"primaryKey;column:order_id;size:64"`
	Claimed   bool    `gorm:"column:claimed;index"`
	ClaimedBy *string `gorm:"column:claimed_by;size:64"`
	MessageID string  `gorm:"column:message_id;size:64"`
	ChannelID string  `gorm:"column:channel_id;size:64"`
	OrderName string  `gorm:"column:order_name"`
	Amount    int64   `gorm:"column:amount"`
}

func (orderRecord) TableName() string { return "orders" }

// Load returns every stored order.
func (s *SnapshotStore) Load(ctx context.Context) ([]*domain.Order, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := s.db.WithContext(ctx).Order("order_id").Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

// Save replaces the table content with the given orders in one transaction.
func (s *SnapshotStore) Save(ctx context.Context, orders []*domain.Order) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	records := make([]orderRecord, 0, len(orders))
	for _, order := range orders {
		if order == nil {
			continue
		}
		records = append(records, toRecord(order))
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&orderRecord{}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.CreateInBatches(&records, saveBatchSize).Error
	})
}

func (s *SnapshotStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres snapshot store not configured")
	}
	return nil
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

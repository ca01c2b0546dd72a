package migrations

import (
	"gorm.io/gorm"
)

// Run applies the schema used by the PostgreSQL snapshot store.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(&orderRecord{})
}

// Order schema mirrors the orders Postgres snapshot adapter.
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

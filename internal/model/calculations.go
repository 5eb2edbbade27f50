package model

import "time"

// Calculation is a cost-calculation sheet for an import/trade deal.
// The reminder engine only reads it, to derive follow-up content; the
// record itself is owned by the wider CRM.
type Calculation struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID      int64     `gorm:"column:user_id;not null;index" json:"user_id"`
	Name        string    `gorm:"column:name;size:255;not null" json:"name"`
	ClientName  string    `gorm:"column:client_name;size:255;not null" json:"client_name"`
	TotalAmount float64   `gorm:"column:total_amount;not null;default:0" json:"total_amount"`
	Currency    string    `gorm:"column:currency;size:8;not null;default:'USD'" json:"currency"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName overrides the table name
func (Calculation) TableName() string {
	return "calculations"
}

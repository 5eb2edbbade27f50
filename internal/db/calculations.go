package db

import "tradecrm/internal/model"

// CreateCalculation creates a new calculation record
func (db *DB) CreateCalculation(calc *model.Calculation) error {
	return db.conn.Create(calc).Error
}

// GetUserCalculation retrieves a calculation by id, scoped to its owner
func (db *DB) GetUserCalculation(id, userID int64) (*model.Calculation, error) {
	var calc model.Calculation
	result := db.conn.Where("id = ? AND user_id = ?", id, userID).First(&calc)
	if result.Error != nil {
		return nil, result.Error
	}
	return &calc, nil
}

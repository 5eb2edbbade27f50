package repository

import (
	"errors"

	"tradecrm/internal/model"

	"gorm.io/gorm"
)

type Calculations struct {
	Repository
}

// GetForUser returns the calculation and whether it exists for this owner
func (c *Calculations) GetForUser(id, userID int64) (*model.Calculation, bool, error) {
	calc, err := c.DB.GetUserCalculation(id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return calc, true, nil
}

func (c *Calculations) Create(calc *model.Calculation) error {
	return c.DB.CreateCalculation(calc)
}

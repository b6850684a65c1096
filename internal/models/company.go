package models

import "time"

// Company is owned by the company registry. Overrides reference it by id.
type Company struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Company) TableName() string {
	return "empresas"
}

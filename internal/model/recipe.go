package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// JSONStringArray stores an ordered list of strings as a JSON text column.
type JSONStringArray []string

// Value implements the driver.Valuer interface
func (a JSONStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements the sql.Scanner interface
func (a *JSONStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Recipe is the central entity. UserID is set once at creation and never
// changes; rows are hard-deleted.
type Recipe struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	UserID       string          `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Title        string          `gorm:"size:255;not null" json:"title"`
	Description  string          `gorm:"type:text" json:"description"`
	Category     string          `gorm:"size:50" json:"category"`
	CookTime     string          `gorm:"size:50" json:"cook_time"`
	Servings     string          `gorm:"size:50" json:"servings"`
	Ingredients  JSONStringArray `gorm:"type:text;not null;default:'[]'" json:"ingredients"`
	Instructions JSONStringArray `gorm:"type:text;not null;default:'[]'" json:"instructions"`
	Tags         JSONStringArray `gorm:"type:text" json:"tags"`
	ImageURL     string          `gorm:"size:255" json:"image_url"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

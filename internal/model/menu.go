package model

import "time"

// MenuItem represents one sellable menu entry. Items are created at seed
// time and never deleted; staff adjust stock and the sold-out flag.
type MenuItem struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     int       `json:"price"`
	Category  string    `json:"category"`
	Stock     int       `json:"stock"`
	SoldOut   bool      `json:"sold_out"`
	ImageMime string    `json:"image_mime,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Menu categories.
const (
	CategorySpecial = "special"
	CategoryMain    = "main"
	CategorySide    = "side"
	CategoryDessert = "dessert"
	CategoryOptions = "options"
	CategoryDrink   = "drink"
)

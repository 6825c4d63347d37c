package model

import "fmt"

// Item is one inventory record. ImageKey is the object-store key of the
// item's image, empty when the item has none.
type Item struct {
	ID          int64   `json:"id"`
	Name        string  `json:"nombre"`
	Description string  `json:"descripcion"`
	Quantity    int64   `json:"cantidad"`
	Brand       string  `json:"marca"`
	Price       float64 `json:"precio"`
	ImageKey    string  `json:"imagen,omitempty"`
}

// HasImage reports whether the item references an object in the bucket.
func (i Item) HasImage() bool {
	return i.ImageKey != ""
}

// ImageURL returns the path the web views use to display the item's image.
func (i Item) ImageURL() string {
	if i.ImageKey == "" {
		return ""
	}
	return ImagePath(i.ImageKey)
}

// PriceLabel formats the price with two decimals.
func (i Item) PriceLabel() string {
	return fmt.Sprintf("%.2f", i.Price)
}

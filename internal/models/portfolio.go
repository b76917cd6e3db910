package models

import "time"

// PortfolioItem is the API-facing shape of a portfolio entry. Image keys are
// projected to public URLs; clients never see raw storage keys here.
type PortfolioItem struct {
	ItemID      string    `json:"item_id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	ContentHTML string    `json:"content_html"`
	ImageURLs   []string  `json:"image_urls"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

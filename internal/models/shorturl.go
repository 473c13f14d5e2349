package models

import "time"

// ShortURL limits.
const (
	OriginalURLMaxLen = 600
	ShortCodeLen      = 6
)

// ShortURL maps a globally unique ShortCode to the OriginalURL it stands for.
type ShortURL struct {
	ID          int64     `db:"id" json:"id"`
	OriginalURL string    `db:"original_url" json:"original_url"`
	ShortCode   string    `db:"short_code" json:"short_code"`
	CreatedBy   int64     `db:"created_by" json:"created_by"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

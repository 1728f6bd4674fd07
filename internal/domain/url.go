package domain

import (
	"strings"
	"time"
)

// URL is the persisted mapping between an allocated id and the original URL.
// ShortCode is empty until the code derived from ID has been assigned.
type URL struct {
	ID          int64     `db:"id" json:"id"`
	OriginalURL string    `db:"original_url" json:"originalUrl"`
	ShortCode   string    `db:"short_code" json:"shortCode,omitempty"`
	Clicks      int64     `db:"clicks" json:"clicks"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

func NewURL(id int64, originalURL string) (*URL, error) {
	if err := ValidateOriginalURL(originalURL); err != nil {
		return nil, err
	}

	return &URL{
		ID:          id,
		OriginalURL: originalURL,
		Clicks:      0,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// ValidateOriginalURL rejects empty and whitespace-only URLs.
func ValidateOriginalURL(originalURL string) error {
	if strings.TrimSpace(originalURL) == "" {
		return ErrInvalidURL
	}
	return nil
}

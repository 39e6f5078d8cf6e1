package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// GiftSummary is the part of a ranked gift kept in history.
type GiftSummary struct {
	Rank      int     `json:"rank"`
	Name      string  `json:"name"`
	Cost      string  `json:"cost"`
	Query     string  `json:"query,omitempty"`
	MeanScore float64 `json:"mean_score"`
	Votes     int     `json:"votes"`
}

// Recommendation is one delivered pipeline run.
type Recommendation struct {
	ID         string         `db:"id"`
	ChatID     int64          `db:"chat_id"`
	UserID     int64          `db:"user_id"`
	PersonInfo string         `db:"person_info"`
	Stage      string         `db:"stage"`
	TopGifts   types.JSONText `db:"top_gifts"`
	DurationMS int64          `db:"duration_ms"`
	CreatedAt  time.Time      `db:"created_at"`
}

// SetGifts stores gifts in TopGifts.
func (r *Recommendation) SetGifts(gifts []GiftSummary) error {
	if gifts == nil {
		gifts = []GiftSummary{}
	}
	raw, err := json.Marshal(gifts)
	if err != nil {
		return fmt.Errorf("encode top gifts: %w", err)
	}
	r.TopGifts = types.JSONText(raw)
	return nil
}

// Gifts decodes TopGifts.
func (r Recommendation) Gifts() ([]GiftSummary, error) {
	var gifts []GiftSummary
	if len(r.TopGifts) == 0 {
		return gifts, nil
	}
	if err := r.TopGifts.Unmarshal(&gifts); err != nil {
		return nil, fmt.Errorf("decode top gifts: %w", err)
	}
	return gifts, nil
}

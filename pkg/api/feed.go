package api

import (
	"time"

	"github.com/nulzo/model-radar/internal/core/domain"
)

// Feed is the live intelligence document consumed by dashboards and publishers.
type Feed struct {
	Metadata        FeedMetadata         `json:"metadata"`
	TopValueModels  []domain.RankedModel `json:"top_value_models"`
	ArbitrageAlerts ArbitrageAlerts      `json:"arbitrage_alerts"`
}

type FeedMetadata struct {
	GeneratedAt        time.Time `json:"generated_at"`
	TotalModelsScanned int       `json:"total_models_scanned"`
	RunID              string    `json:"run_id,omitempty"`
}

type ArbitrageAlerts struct {
	ValueKings  []domain.RankedModel `json:"value_kings"`
	SpeedDemons []domain.RankedModel `json:"speed_demons"`
}

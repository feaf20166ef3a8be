package arbitrage

import (
	"context"
	"errors"
	"fmt"

	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/store"
	"go.uber.org/zap"
)

// Thresholds bound the deal categories. Comparisons are strict.
type Thresholds struct {
	PerformanceFloor float64 `mapstructure:"performance_floor" json:"performance_floor" validate:"gte=0,lte=1"`
	ValueCostCeiling float64 `mapstructure:"value_cost_ceiling" json:"value_cost_ceiling" validate:"gte=0"`
	SpeedFloor       float64 `mapstructure:"speed_floor" json:"speed_floor" validate:"gte=0"`
	SpeedCostCeiling float64 `mapstructure:"speed_cost_ceiling" json:"speed_cost_ceiling" validate:"gte=0"`
}

// DefaultThresholds are the detector defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{PerformanceFloor: 0.6, ValueCostCeiling: 2.0, SpeedFloor: 50, SpeedCostCeiling: 1.0}
}

// FeedThresholds are the stricter defaults used for published alerts.
func FeedThresholds() Thresholds {
	return Thresholds{PerformanceFloor: 0.8, ValueCostCeiling: 0.5, SpeedFloor: 100, SpeedCostCeiling: 0.1}
}

// Detect classifies ranked models. Both categories are always present and keep the
// ranking order; a model can be in both.
func Detect(ranked []domain.RankedModel, t Thresholds) domain.Deals {
	deals := domain.Deals{
		domain.ValueKing:  []domain.RankedModel{},
		domain.SpeedDemon: []domain.RankedModel{},
	}
	for _, m := range ranked {
		if m.AvgPerf > t.PerformanceFloor && m.AvgCost < t.ValueCostCeiling {
			deals[domain.ValueKing] = append(deals[domain.ValueKing], m)
		}
		if m.AvgSpeed > t.SpeedFloor && m.AvgCost < t.SpeedCostCeiling {
			deals[domain.SpeedDemon] = append(deals[domain.SpeedDemon], m)
		}
	}
	return deals
}

// Calculator recomputes rankings when none are stored.
type Calculator interface {
	Calculate(ctx context.Context) ([]domain.RankedModel, error)
}

type Detector struct {
	logger     *zap.Logger
	repo       store.Repository
	ranker     Calculator
	thresholds Thresholds
}

func NewDetector(logger *zap.Logger, repo store.Repository, ranker Calculator, t Thresholds) *Detector {
	return &Detector{logger: logger, repo: repo, ranker: ranker, thresholds: t}
}

func (d *Detector) Thresholds() Thresholds { return d.thresholds }

// DetectFromStore classifies the stored rankings, calculating them first when the
// snapshot is absent. A detector without a ranker never writes: an absent rankings
// snapshot is returned as a PrerequisiteError instead.
func (d *Detector) DetectFromStore(ctx context.Context) (domain.Deals, error) {
	ranked, err := d.repo.Rankings().List(ctx, 0)
	if errors.Is(err, domain.ErrPrerequisiteMissing) && d.ranker != nil {
		d.logger.Info("No rankings stored, calculating")
		ranked, err = d.ranker.Calculate(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("load rankings: %w", err)
	}

	deals := Detect(ranked, d.thresholds)
	d.logger.Debug("Arbitrage detected",
		zap.Int(string(domain.ValueKing), len(deals[domain.ValueKing])),
		zap.Int(string(domain.SpeedDemon), len(deals[domain.SpeedDemon])))
	return deals, nil
}

package visualization

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"salin-system/internal/database/models"
	"salin-system/internal/referral"
	"salin-system/internal/scope"
)

const (
	scoreSummaryCachePrefix = "score_summary:"
	scoreSummaryCacheTTL    = 2 * time.Hour
)

type Service struct {
	db    *gorm.DB
	redis *redis.Client
	log   *logrus.Logger
}

func NewService(db *gorm.DB, redisClient *redis.Client, log *logrus.Logger) *Service {
	return &Service{db: db, redis: redisClient, log: log}
}

// ScoreRecord is the flat serialized form consumed by both the table and the
// collapsible chart. The chart re-derives the tree from this list with the
// same dangling-parent-becomes-root rule the builder uses.
type ScoreRecord struct {
	CustomerID      string `json:"customer_id"`
	CitizenID       string `json:"citizen_id"`
	Name            string `json:"name"`
	Position        string `json:"position"`
	RecommenderID   string `json:"recommender_id"`
	RecommenderName string `json:"recommender_name"`
	RegisterDate    string `json:"register_date"`
	TreeLevel       int    `json:"tree_level"`
	SelfScore       string `json:"self_score"`
	TotalScore      string `json:"total_score"`
}

// ScoreSummary builds the scoped referral forest for a calendar month and
// returns the pre-order flattened rollup. 1 baht of order subtotal = 1 point.
func (s *Service) ScoreSummary(ctx context.Context, sc scope.AccessScope, year, month int) ([]ScoreRecord, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month out of range: %d", month)
	}

	cacheKey := s.cacheKey(sc, year, month)
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached []ScoreRecord
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached, nil
			}
		} else if err != redis.Nil {
			s.log.WithError(err).Warn("score summary cache read failed, falling back to DB")
		}
	}

	var customers []models.Customer
	if err := sc.Apply(s.db.WithContext(ctx)).Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}

	start, end := MonthWindow(year, month)
	var orders []models.Order
	err := sc.Apply(s.db.WithContext(ctx)).
		Where("order_date >= ? AND order_date < ?", start, end).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	selfScores := make(map[string]int64)
	for _, o := range orders {
		selfScores[o.CustomerID] += o.TotalAmount
	}

	rows := make([]referral.Summary, 0, len(customers))
	for _, c := range customers {
		row := referral.Summary{
			CustomerID: c.ID,
			CitizenID:  c.CitizenID,
			Name:       c.DisplayName(),
		}
		if c.Position != nil {
			row.Position = *c.Position
		} else {
			row.Position = "-"
		}
		if c.RecommenderID != nil {
			row.RecommenderID = *c.RecommenderID
		}
		if c.RegisterDate != nil {
			row.RegisterDate = *c.RegisterDate
		}
		rows = append(rows, row)
	}

	roots, cycles := referral.BuildForest(rows)
	if cycles > 0 {
		s.log.WithFields(logrus.Fields{
			"cycles": cycles,
			"scope":  sc.CacheKey(),
		}).Warn("recommender cycles broken during tree build")
	}
	referral.Aggregate(roots, selfScores)

	flat := referral.Flatten(roots)
	records := make([]ScoreRecord, 0, len(flat))
	for _, n := range flat {
		records = append(records, ScoreRecord{
			CustomerID:      n.CustomerID,
			CitizenID:       n.CitizenID,
			Name:            n.Name,
			Position:        n.Position,
			RecommenderID:   n.RecommenderID,
			RecommenderName: n.RecommenderName,
			RegisterDate:    n.RegisterDate,
			TreeLevel:       n.TreeLevel,
			SelfScore:       n.SelfScore().StringFixed(2),
			TotalScore:      n.TotalScore().StringFixed(2),
		})
	}

	if s.redis != nil {
		if data, err := json.Marshal(records); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, scoreSummaryCacheTTL).Err(); err != nil {
				s.log.WithError(err).Warn("score summary cache write failed")
			}
		}
	}
	return records, nil
}

// Invalidate drops the cached summary for the scope and month an order
// mutation touched.
func (s *Service) Invalidate(ctx context.Context, sc scope.AccessScope, orderDate time.Time) {
	if s.redis == nil {
		return
	}
	key := s.cacheKey(sc, orderDate.Year(), int(orderDate.Month()))
	if err := s.redis.Del(ctx, key).Err(); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("score summary cache invalidation failed")
	}
}

func (s *Service) cacheKey(sc scope.AccessScope, year, month int) string {
	return fmt.Sprintf("%s%s:%04d-%02d", scoreSummaryCachePrefix, sc.CacheKey(), year, month)
}

// MonthWindow is the half-open [start, end) range covering a calendar month.
func MonthWindow(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"salin-system/internal/apperr"
	"salin-system/internal/database/models"
	"salin-system/internal/discount"
	"salin-system/internal/scope"
)

// ScoreCache drops cached score summaries affected by an order mutation.
type ScoreCache interface {
	Invalidate(ctx context.Context, sc scope.AccessScope, orderDate time.Time)
}

type Service struct {
	db     *gorm.DB
	log    *logrus.Logger
	scores ScoreCache
}

func NewService(db *gorm.DB, log *logrus.Logger, scores ScoreCache) *Service {
	return &Service{db: db, log: log, scores: scores}
}

type ItemInput struct {
	ProductCode  string
	ProductName  string
	ProductSize  string
	ProductColor string
	UnitPrice    decimal.Decimal
	Quantity     int32
}

type CreateInput struct {
	CustomerID      string
	RecommenderID   string
	AssistantID     string
	OrderDate       time.Time
	OrderType       string
	ShippingAddress string
	Items           []ItemInput
}

// ValidateInput rejects an order before anything is written.
func ValidateInput(in CreateInput) error {
	if in.CustomerID == "" {
		return fmt.Errorf("customer id is required: %w", apperr.ErrInvalid)
	}
	if len(in.Items) == 0 {
		return fmt.Errorf("order needs at least one item: %w", apperr.ErrInvalid)
	}
	for i, item := range in.Items {
		if item.Quantity <= 0 {
			return fmt.Errorf("item %d: quantity must be positive: %w", i, apperr.ErrInvalid)
		}
		if item.UnitPrice.Sign() < 0 {
			return fmt.Errorf("item %d: negative unit price: %w", i, apperr.ErrInvalid)
		}
	}
	switch in.OrderType {
	case "", models.OrderTypeFirst, models.OrderTypeContinue:
	default:
		return fmt.Errorf("unknown order type %q: %w", in.OrderType, apperr.ErrInvalid)
	}
	return nil
}

// Subtotal sums the line totals in display units.
func Subtotal(items []ItemInput) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Create validates the order, recomputes totals server-side from the buyer's
// position snapshot and persists the header, then the items. The two inserts
// are separate round trips: a failure between them leaves a zero-item header,
// which reads treat as a recoverable anomaly rather than a crash.
func (s *Service) Create(ctx context.Context, sc scope.AccessScope, in CreateInput) (*models.Order, error) {
	if err := ValidateInput(in); err != nil {
		return nil, err
	}

	var customer models.Customer
	err := sc.Apply(s.db.WithContext(ctx)).Where("id = ?", in.CustomerID).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("customer %s: %w", in.CustomerID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("load buyer: %w", err)
	}

	orderType := in.OrderType
	if orderType == "" {
		orderType = models.OrderTypeFirst
	}
	position := ""
	if customer.Position != nil {
		position = *customer.Position
	}

	totals := discount.ComputeTotals(Subtotal(in.Items), position, orderType)

	orderDate := in.OrderDate
	if orderDate.IsZero() {
		orderDate = time.Now()
	}

	order := &models.Order{
		ID:              uuid.NewString(),
		OrderDate:       &orderDate,
		CustomerID:      customer.ID,
		RecommenderID:   nilIfEmpty(in.RecommenderID),
		AssistantID:     nilIfEmpty(in.AssistantID),
		Position:        nilIfEmpty(position),
		TotalAmount:     totals.Subtotal,
		Discount:        totals.Discount,
		PriceBeforeTax:  totals.PriceBeforeTax,
		Tax:             totals.Tax,
		FinalPrice:      totals.FinalPrice,
		OrderType:       orderType,
		ShippingAddress: nilIfEmpty(in.ShippingAddress),
		RecordByUserID:  sc.UserID,
		RecordByTeamID:  sc.TeamIDPtr(),
	}

	if err := s.db.WithContext(ctx).Omit("Items").Create(order).Error; err != nil {
		return nil, fmt.Errorf("create order header: %w", err)
	}

	items := make([]models.OrderItem, 0, len(in.Items))
	for _, item := range in.Items {
		orderID := order.ID
		items = append(items, models.OrderItem{
			ID:           uuid.NewString(),
			OrderID:      &orderID,
			ProductCode:  nilIfEmpty(item.ProductCode),
			ProductName:  nilIfEmpty(item.ProductName),
			ProductSize:  nilIfEmpty(item.ProductSize),
			ProductColor: nilIfEmpty(item.ProductColor),
			ProductPrice: item.UnitPrice.Mul(decimal.NewFromInt(100)).Round(0).IntPart(),
			Quantity:     item.Quantity,
		})
	}
	if err := s.db.WithContext(ctx).Create(&items).Error; err != nil {
		s.log.WithFields(logrus.Fields{
			"order_id": order.ID,
			"items":    len(items),
		}).Error("order items insert failed after header insert, header is orphaned")
		return nil, fmt.Errorf("create order items: %w", err)
	}
	order.Items = items

	if s.scores != nil {
		s.scores.Invalidate(ctx, sc, orderDate)
	}
	return order, nil
}

func (s *Service) GetByID(ctx context.Context, sc scope.AccessScope, id string) (*models.Order, error) {
	var order models.Order
	err := sc.Apply(s.db.WithContext(ctx)).Preload("Items").Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if len(order.Items) == 0 {
		// Header without items: a create that failed between round trips.
		s.log.WithField("order_id", order.ID).Warn("order has no items")
	}
	return &order, nil
}

// ListRow is one order history line with buyer and recommender names joined.
type ListRow struct {
	Order           models.Order `json:"order"`
	CustomerName    string       `json:"customer_name"`
	RecommenderName string       `json:"recommender_name"`
}

func (s *Service) List(ctx context.Context, sc scope.AccessScope, page, pageSize int) ([]ListRow, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	offset := (page - 1) * pageSize

	query := sc.Apply(s.db.WithContext(ctx).Model(&models.Order{}))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	var rows []models.Order
	err := query.Preload("Items").Order("order_date desc").Offset(offset).Limit(pageSize).Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	names, err := s.customerNames(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ListRow, 0, len(rows))
	for _, o := range rows {
		row := ListRow{Order: o, CustomerName: names[o.CustomerID], RecommenderName: "-"}
		if o.RecommenderID != nil {
			if name, ok := names[*o.RecommenderID]; ok && name != "" {
				row.RecommenderName = name
			}
		}
		out = append(out, row)
	}
	return out, total, nil
}

func (s *Service) customerNames(ctx context.Context, rows []models.Order) (map[string]string, error) {
	idSet := make(map[string]bool)
	for _, o := range rows {
		idSet[o.CustomerID] = true
		if o.RecommenderID != nil {
			idSet[*o.RecommenderID] = true
		}
	}
	if len(idSet) == 0 {
		return map[string]string{}, nil
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	var customers []models.Customer
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("load customer names: %w", err)
	}
	names := make(map[string]string, len(customers))
	for i := range customers {
		names[customers[i].ID] = customers[i].DisplayName()
	}
	return names, nil
}

// Delete removes items first and the header second, mirroring the create
// order of operations.
func (s *Service) Delete(ctx context.Context, sc scope.AccessScope, id string) error {
	order, err := s.GetByID(ctx, sc, id)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	if err := s.db.WithContext(ctx).Where("id = ?", order.ID).Delete(&models.Order{}).Error; err != nil {
		return fmt.Errorf("delete order header: %w", err)
	}

	if s.scores != nil && order.OrderDate != nil {
		s.scores.Invalidate(ctx, sc, *order.OrderDate)
	}
	return nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

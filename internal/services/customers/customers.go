package customers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"salin-system/internal/apperr"
	"salin-system/internal/database/models"
	"salin-system/internal/scope"
)

type Service struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewService(db *gorm.DB, log *logrus.Logger) *Service {
	return &Service{db: db, log: log}
}

type CreateInput struct {
	CitizenID     string
	FnameTH       string
	LnameTH       string
	FnameEN       string
	LnameEN       string
	Gender        string
	Nationality   string
	Birthdate     string
	Phone         string
	Address1      string
	Address2      string
	Zipcode       string
	Position      string
	TaxID         string
	RegisterDate  string
	ConsentStatus *bool
	RecommenderID string
}

type UpdateInput struct {
	FnameTH       *string
	LnameTH       *string
	FnameEN       *string
	LnameEN       *string
	Gender        *string
	Nationality   *string
	Birthdate     *string
	Phone         *string
	Address1      *string
	Address2      *string
	Zipcode       *string
	Position      *string
	TaxID         *string
	ConsentStatus *bool
	RecommenderID *string
}

// ListRow is a customer summary with the recommender's display name joined
// on for table rendering.
type ListRow struct {
	ID              string  `json:"customer_id"`
	CitizenID       string  `json:"citizen_id"`
	Name            string  `json:"name"`
	Phone           *string `json:"phone"`
	Position        *string `json:"position"`
	RecommenderID   *string `json:"recommender_id"`
	RecommenderName string  `json:"recommender_name"`
	RegisterDate    *string `json:"register_date"`
}

func (s *Service) Create(ctx context.Context, sc scope.AccessScope, in CreateInput) (*models.Customer, error) {
	if in.CitizenID == "" {
		return nil, fmt.Errorf("citizen id is required: %w", apperr.ErrInvalid)
	}

	exists, err := s.ExistsInScope(ctx, sc, in.CitizenID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("customer with citizen id %s already exists: %w", in.CitizenID, apperr.ErrConflict)
	}

	customer := &models.Customer{
		ID:             uuid.NewString(),
		CitizenID:      in.CitizenID,
		FnameTH:        nilIfEmpty(in.FnameTH),
		LnameTH:        nilIfEmpty(in.LnameTH),
		FnameEN:        nilIfEmpty(in.FnameEN),
		LnameEN:        nilIfEmpty(in.LnameEN),
		Gender:         nilIfEmpty(in.Gender),
		Nationality:    nilIfEmpty(in.Nationality),
		Birthdate:      nilIfEmpty(in.Birthdate),
		Phone:          nilIfEmpty(in.Phone),
		Address1:       nilIfEmpty(in.Address1),
		Address2:       nilIfEmpty(in.Address2),
		Zipcode:        nilIfEmpty(in.Zipcode),
		Position:       nilIfEmpty(in.Position),
		TaxID:          nilIfEmpty(in.TaxID),
		RegisterDate:   nilIfEmpty(in.RegisterDate),
		ConsentStatus:  in.ConsentStatus,
		RecommenderID:  nilIfEmpty(in.RecommenderID),
		RecordByUserID: sc.UserID,
		RecordByTeamID: sc.TeamIDPtr(),
	}

	if customer.RecommenderID != nil {
		// A referrer outside the scope is recorded as-is; the tree renders
		// the customer as a root in that case.
		known, err := s.ExistsInScope(ctx, sc, *customer.RecommenderID)
		if err != nil {
			return nil, err
		}
		if !known {
			s.log.WithFields(logrus.Fields{
				"citizen_id":     customer.CitizenID,
				"recommender_id": *customer.RecommenderID,
			}).Warn("recommender not visible in caller scope")
		}
	}

	if err := s.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}

func (s *Service) GetByID(ctx context.Context, sc scope.AccessScope, id string) (*models.Customer, error) {
	var customer models.Customer
	err := sc.Apply(s.db.WithContext(ctx)).Where("id = ?", id).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("customer %s: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &customer, nil
}

func (s *Service) GetByCitizenID(ctx context.Context, sc scope.AccessScope, citizenID string) (*models.Customer, error) {
	var customer models.Customer
	err := sc.Apply(s.db.WithContext(ctx)).Where("citizen_id = ?", citizenID).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("customer citizen id %s: %w", citizenID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("get customer by citizen id: %w", err)
	}
	return &customer, nil
}

// ExistsInScope backs both the duplicate check on create and the referrer
// pre-check in the order form. It uses the same predicate as every listing.
func (s *Service) ExistsInScope(ctx context.Context, sc scope.AccessScope, citizenID string) (bool, error) {
	var count int64
	err := sc.Apply(s.db.WithContext(ctx).Model(&models.Customer{})).
		Where("citizen_id = ?", citizenID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check citizen id %s: %w", citizenID, err)
	}
	return count > 0, nil
}

func (s *Service) List(ctx context.Context, sc scope.AccessScope, search string, page, pageSize int) ([]ListRow, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	query := sc.Apply(s.db.WithContext(ctx).Model(&models.Customer{}))
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("citizen_id ILIKE ? OR fname_th ILIKE ? OR lname_th ILIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count customers: %w", err)
	}

	var rows []models.Customer
	err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list customers: %w", err)
	}

	out := make([]ListRow, 0, len(rows))
	for _, c := range rows {
		out = append(out, ListRow{
			ID:              c.ID,
			CitizenID:       c.CitizenID,
			Name:            c.DisplayName(),
			Phone:           c.Phone,
			Position:        c.Position,
			RecommenderID:   c.RecommenderID,
			RecommenderName: "-",
			RegisterDate:    c.RegisterDate,
		})
	}

	if err := s.attachRecommenderNames(ctx, sc, out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Service) attachRecommenderNames(ctx context.Context, sc scope.AccessScope, rows []ListRow) error {
	idSet := make(map[string]bool)
	for _, r := range rows {
		if r.RecommenderID != nil && *r.RecommenderID != "" {
			idSet[*r.RecommenderID] = true
		}
	}
	if len(idSet) == 0 {
		return nil
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	var recommenders []models.Customer
	err := sc.Apply(s.db.WithContext(ctx)).Where("citizen_id IN ?", ids).Find(&recommenders).Error
	if err != nil {
		return fmt.Errorf("load recommender names: %w", err)
	}

	names := make(map[string]string, len(recommenders))
	for i := range recommenders {
		names[recommenders[i].CitizenID] = recommenders[i].DisplayName()
	}
	for i := range rows {
		if rows[i].RecommenderID == nil {
			continue
		}
		if name, ok := names[*rows[i].RecommenderID]; ok && name != "" {
			rows[i].RecommenderName = name
		}
	}
	return nil
}

// Search is the typeahead used by the referrer picker.
func (s *Service) Search(ctx context.Context, sc scope.AccessScope, q string) ([]ListRow, error) {
	if q == "" {
		return []ListRow{}, nil
	}
	like := "%" + q + "%"
	var rows []models.Customer
	err := sc.Apply(s.db.WithContext(ctx)).
		Where("citizen_id ILIKE ? OR fname_th ILIKE ? OR lname_th ILIKE ?", like, like, like).
		Limit(10).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	out := make([]ListRow, 0, len(rows))
	for _, c := range rows {
		out = append(out, ListRow{
			ID:        c.ID,
			CitizenID: c.CitizenID,
			Name:      c.DisplayName(),
			Position:  c.Position,
		})
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, sc scope.AccessScope, id string, in UpdateInput) (*models.Customer, error) {
	customer, err := s.GetByID(ctx, sc, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	assign := func(column string, v *string) {
		if v != nil {
			updates[column] = nilIfEmpty(*v)
		}
	}
	assign("fname_th", in.FnameTH)
	assign("lname_th", in.LnameTH)
	assign("fname_en", in.FnameEN)
	assign("lname_en", in.LnameEN)
	assign("gender", in.Gender)
	assign("nationality", in.Nationality)
	assign("birthdate", in.Birthdate)
	assign("phone", in.Phone)
	assign("address1", in.Address1)
	assign("address2", in.Address2)
	assign("zipcode", in.Zipcode)
	assign("position", in.Position)
	assign("tax_id", in.TaxID)
	assign("recommender_id", in.RecommenderID)
	if in.ConsentStatus != nil {
		updates["consent_status"] = *in.ConsentStatus
	}
	if len(updates) == 0 {
		return customer, nil
	}

	err = s.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", customer.ID).Updates(updates).Error
	if err != nil {
		return nil, fmt.Errorf("update customer %s: %w", id, err)
	}
	return s.GetByID(ctx, sc, id)
}

func (s *Service) Delete(ctx context.Context, sc scope.AccessScope, id string) error {
	res := sc.Apply(s.db.WithContext(ctx)).Where("id = ?", id).Delete(&models.Customer{})
	if res.Error != nil {
		return fmt.Errorf("delete customer %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("customer %s: %w", id, apperr.ErrNotFound)
	}
	return nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package models

import "time"

const (
	OrderTypeFirst    = "f_order"
	OrderTypeContinue = "c_order"
)

// Order money fields are stored in satang (integer minor units). Totals are
// computed once at creation and never recomputed on read.
type Order struct {
	ID        string     `gorm:"type:uuid;primaryKey"`
	OrderDate *time.Time `gorm:"index"`

	CustomerID    string  `gorm:"type:uuid;index;not null"`
	RecommenderID *string `gorm:"type:uuid"`
	AssistantID   *string `gorm:"type:uuid"`

	// Position snapshot of the buyer at order time; drives the discount tier.
	Position *string

	TotalAmount    int64 `gorm:"not null"`
	Discount       int64 `gorm:"not null"`
	PriceBeforeTax int64 `gorm:"not null"`
	Tax            int64 `gorm:"not null"`
	FinalPrice     int64 `gorm:"not null"`

	OrderType       string  `gorm:"not null;default:f_order"`
	ShippingAddress *string `gorm:"type:text"`

	RecordByUserID string  `gorm:"type:uuid;index;not null"`
	RecordByTeamID *string `gorm:"type:uuid;index"`

	// SourceOrderID links a scope clone back to the order it was copied from.
	// Null for originals. Used to keep join/leave cloning idempotent.
	SourceOrderID *string `gorm:"type:uuid;index"`

	CreatedAt *time.Time `gorm:"autoCreateTime"`

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

// LineageID identifies an order across scope clones.
func (o *Order) LineageID() string {
	if o.SourceOrderID != nil {
		return *o.SourceOrderID
	}
	return o.ID
}

// OrderItem is an immutable snapshot of the product at order time; later
// catalog changes never alter historical orders.
type OrderItem struct {
	ID      string  `gorm:"type:uuid;primaryKey"`
	OrderID *string `gorm:"type:uuid;index"`

	ProductCode  *string
	ProductName  *string
	ProductSize  *string
	ProductColor *string
	ProductPrice int64 `gorm:"not null"`
	Quantity     int32 `gorm:"not null"`

	CreatedAt *time.Time `gorm:"autoCreateTime"`
}

type Product struct {
	ProductCode string `gorm:"primaryKey"`
	ProductID   *int64

	NameTH  *string
	NameEN  *string
	ColorTH *string
	ColorEN *string
	Size    *string

	PricePerUnit int64 `gorm:"not null"`

	UnderBust *int64
	TopBust   *int64
	WaistMin  *int64
	WaistMax  *int64
	HipMin    *int64
	HipMax    *int64
	BustMin   *int64
	BustMax   *int64
	HeightMin *int64
	HeightMax *int64
}

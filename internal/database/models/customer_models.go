package models

import "time"

// Position tiers carried on customers and snapshotted onto orders.
const (
	PositionSAG  = "SAG"
	PositionSFAG = "SFAG"
	PositionAG   = "AG"
	PositionBM   = "BM"
)

type Customer struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	CitizenID string `gorm:"index;not null"`

	FnameTH *string
	LnameTH *string
	FnameEN *string
	LnameEN *string

	Gender      *string
	Nationality *string
	Birthdate   *string

	Phone    *string
	Address1 *string `gorm:"type:text"`
	Address2 *string `gorm:"type:text"`
	Zipcode  *string

	Position *string
	TaxID    *string

	RegisterDate  *string
	ConsentStatus *bool

	// RecommenderID holds the referrer's citizen id, not a row uuid.
	RecommenderID *string `gorm:"index"`

	RecordByUserID string  `gorm:"type:uuid;index;not null"`
	RecordByTeamID *string `gorm:"type:uuid;index"`

	CreatedAt *time.Time `gorm:"autoCreateTime"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime"`
}

// DisplayName renders the Thai full name the way lists and tree labels show it.
func (c *Customer) DisplayName() string {
	name := ""
	if c.FnameTH != nil {
		name = *c.FnameTH
	}
	if c.LnameTH != nil {
		if name != "" {
			name += " "
		}
		name += *c.LnameTH
	}
	return name
}

type UserProfile struct {
	UserID string `gorm:"type:uuid;primaryKey"`

	FullName  *string
	Email     *string
	Phone     *string
	AvatarURL *string

	SocialLoginProvider  *string
	SocialProviderUserID *string

	PaymentChannel *string
	PaymentBank    *string
	PaymentID      *string

	CreatedAt *time.Time `gorm:"autoCreateTime"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime"`
}

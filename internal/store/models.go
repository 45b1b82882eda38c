package store

import "github.com/pitabwire/frame/data"

// GiftStatusNotStarted is the initial status of every scheduled gift.
const GiftStatusNotStarted = "not_started"

// Person is a gift recipient registered by a user.
type Person struct {
	data.BaseModel

	ProfileID    string `gorm:"type:varchar(50);not null;index:idx_people_profile" json:"profile_id"`
	Name         string `gorm:"type:varchar(255);not null"                          json:"name"`
	Relationship string `gorm:"type:varchar(100)"                                   json:"relationship,omitempty"`
	Birthday     string `gorm:"type:varchar(50)"                                    json:"birthday,omitempty"`
}

func (Person) TableName() string { return "people" }

// Gift is a scheduled gift tied to a recipient and an occasion. Field values
// arrive as the free text the user typed in the dialog; nothing is
// format-checked before storage.
type Gift struct {
	data.BaseModel

	ProfileID   string `gorm:"type:varchar(50);not null;index:idx_gifts_profile"     json:"profile_id"`
	RecipientID string `gorm:"type:varchar(50);not null;index:idx_gifts_recipient"   json:"recipient_id"`
	EventType   string `gorm:"type:varchar(100);not null"                             json:"event_type"`
	EventDate   string `gorm:"type:varchar(50);not null"                              json:"event_date"`
	AmountTier  string `gorm:"type:varchar(50)"                                       json:"amount_tier"`
	GiftMessage string `gorm:"type:text"                                              json:"gift_message,omitempty"`
	Status      string `gorm:"type:varchar(20);not null;default:'not_started'"        json:"status"`
}

func (Gift) TableName() string { return "gifts" }

// PersonPayload carries the collected fields for a new person record.
type PersonPayload struct {
	Name         string
	Relationship string
	Birthday     string
}

// GiftPayload carries the collected fields for a new gift record.
type GiftPayload struct {
	RecipientID string
	EventType   string
	EventDate   string
	AmountTier  string
	Message     string
}

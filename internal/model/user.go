package model

import "time"

// User mirrors the identity supplied by the auth collaborator. IDs come
// from outside (token subject, Telegram id) and are never generated here.
type User struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	Email      string    `json:"email"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	College    string    `json:"college"`
	Timezone   string    `gorm:"default:UTC" json:"timezone"`
	TelegramID int64     `gorm:"index" json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

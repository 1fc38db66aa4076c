package user

import "time"

// User is the persisted shape of a dashboard account. Role and company are
// assigned by an admin; the client core never invents them.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"uniqueIndex;not null"`
	Name         string    `json:"name"`
	Role         string    `json:"role" gorm:"not null"`
	Company      *string   `json:"company" gorm:"column:company"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	IsActive     bool      `json:"is_active" gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"column:updated_at"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

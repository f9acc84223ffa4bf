package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User is the identity row. Usage accounting lives directly on the identity:
// TokensUsed counts synthesis calls consumed since UsageResetAt, TokensLimit
// is the plan-defined ceiling.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	PasswordHash string    `gorm:"not null;column:password_hash" json:"-"`
	Role         string    `gorm:"not null;default:USER;column:role" json:"role"`
	HasPaid      bool      `gorm:"not null;default:false;column:has_paid" json:"hasPaid"`
	Plan         *string   `gorm:"column:plan" json:"plan"`
	TokensUsed   int       `gorm:"not null;default:0;column:tokens_used" json:"tokensUsed"`
	TokensLimit  int       `gorm:"not null;column:tokens_limit" json:"tokensLimit"`
	UsageResetAt time.Time `gorm:"not null;column:usage_reset_at" json:"-"`
	CreatedAt    time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"not null" json:"-"`
}

func (User) TableName() string {
	return "user"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

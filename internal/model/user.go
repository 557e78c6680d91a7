package model

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleCashier    = "cashier"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

// User stores operator accounts with role-based access.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"column:nome;not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"column:rol;type:varchar(20);not null"`
	Active       bool   `gorm:"column:ativo;not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "usuarios" }

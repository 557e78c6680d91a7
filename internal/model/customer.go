package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer is master data referenced optionally by sales.
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"column:nome;not null"`
	Document  *string   `gorm:"column:documento;uniqueIndex"`
	Phone     *string   `gorm:"column:telefone"`
	Email     *string
	Address   *string   `gorm:"column:endereco"`
	CreatedAt time.Time `gorm:"column:data_cadastro"`
}

func (Customer) TableName() string { return "clientes" }

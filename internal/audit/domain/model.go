// Package domain contains the audit trail model for order and billing actions.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ActorType represents who triggered an action.
type ActorType string

const (
	ActorTypeStaff  ActorType = "staff"
	ActorTypeSystem ActorType = "system"
)

const (
	ActionOrderCreated   = "order.created"
	ActionOrderUpdated   = "order.updated"
	ActionOrderCancelled = "order.cancelled"
	ActionOrderBilled    = "order.billed"
	ActionInvoiceStored  = "invoice.stored"
)

// AuditLog captures an immutable record of an order or billing action.
// Writes are best-effort; a missing table must never fail the mutation it
// accompanies.
type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey"`
	HotelID    snowflake.ID      `gorm:"not null;index"`
	ActorType  string            `gorm:"type:text;not null"`
	ActorID    *string           `gorm:"type:text"`
	Action     string            `gorm:"type:text;not null;index"`
	TargetType string            `gorm:"type:text;not null"`
	TargetID   string            `gorm:"type:text;not null"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt  time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (AuditLog) TableName() string { return "audit_logs" }

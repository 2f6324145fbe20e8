package admin

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Action is an audit log row for admin activity.
type Action struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AdminID   uuid.UUID `gorm:"type:uuid;not null;index" json:"admin_id"`
	Action    string    `gorm:"size:100;not null" json:"action"`
	Details   string    `gorm:"type:text" json:"details,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for Action
func (Action) TableName() string {
	return "admin_actions"
}

// BeforeCreate hook for Action
func (a *Action) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

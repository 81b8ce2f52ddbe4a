package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog represents a persisted audit event
type AuditLog struct {
	ID        uint      `json:"id" gorm:"primaryKey" bson:"_id"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime;index" bson:"created_at"`
	EventType string    `json:"event_type" gorm:"column:event_type;type:varchar(64);index" bson:"event_type"`
	Actor     string    `json:"actor" gorm:"column:actor;type:varchar(191);index" bson:"actor"`
	IP        string    `json:"ip" gorm:"column:ip;type:varchar(45)" bson:"ip"`
	// Location stores city and country in the format "City/Country" when available.
	Location  string         `json:"location" gorm:"column:location;type:varchar(255)" bson:"location"`
	UserAgent string         `json:"user_agent" gorm:"column:user_agent;type:varchar(512)" bson:"user_agent"`
	Action    string         `json:"action" gorm:"column:action;type:text" bson:"action"`
	Details   datatypes.JSON `json:"details" gorm:"column:details" bson:"details,omitempty"`
}

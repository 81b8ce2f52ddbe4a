package model

import "time"

// Patient is a registered patient. Email is not unique.
type Patient struct {
	ID        uint      `json:"id" gorm:"primaryKey" bson:"_id"`
	Name      string    `json:"name" gorm:"column:name;type:varchar(191);not null;index" bson:"name"`
	Email     string    `json:"email" gorm:"column:email;type:varchar(191);not null" bson:"email"`
	CreatedAt time.Time `json:"-" gorm:"column:created_at;autoCreateTime" bson:"created_at"`
}

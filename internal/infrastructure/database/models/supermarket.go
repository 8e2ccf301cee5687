package models

import (
	"time"
)

type Supermarket struct {
	ID         int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Identifier string     `json:"identifier" gorm:"type:text;index"`
	Name       string     `json:"name" gorm:"type:text;not null"`
	URL        string     `json:"url" gorm:"type:text"`
	UpdatedAt  *time.Time `json:"updatedAt" gorm:"type:timestamp with time zone;autoUpdateTime:false"`
	CDate      time.Time  `json:"cdate" gorm:"->;<-:create;type:timestamp with time zone;not null;default:clock_timestamp()"`
}

package model

import (
	"time"

	"github.com/google/uuid"
)

type NewsDocument struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ExternalId int64     `gorm:"not null;index"`
	Category   string    `gorm:"type:varchar(64)"`
	Datetime   int64     `gorm:"not null"`
	Headline   string    `gorm:"type:text;not null"`
	Image      *string   `gorm:"type:text"`
	Related    string    `gorm:"type:varchar(64)"`
	Source     string    `gorm:"type:varchar(128)"`
	Summary    string    `gorm:"type:text"`
	Url        string    `gorm:"type:text;not null;uniqueIndex"` // dedup key
	Ticker     string    `gorm:"type:varchar(16);not null;index"`
	Date       string    `gorm:"type:varchar(10);not null;index"` // YYYY-MM-DD
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (NewsDocument) TableName() string {
	return "news_documents"
}

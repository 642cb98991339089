package entity

import (
	"time"

	"github.com/google/uuid"
)

// NewsDocument is a stored news article. Url is unique across the store.
// The validate tags describe what a record must look like before insert.
type NewsDocument struct {
	Id         uuid.UUID
	ExternalId int64   `validate:"required"`
	Category   string
	Datetime   int64   `validate:"required,gt=0"`
	Headline   string  `validate:"required"`
	Image      *string `validate:"omitempty,url"`
	Related    string
	Source     string
	Summary    string
	Url        string `validate:"required,url"`
	Ticker     string `validate:"required,max=16"`
	Date       string `validate:"required,datetime=2006-01-02"`
	CreatedAt  time.Time
}

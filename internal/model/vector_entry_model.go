package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type VectorEntry struct {
	Id        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Content   string            `gorm:"type:text;not null"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb"`
	SourceUrl string            `gorm:"type:text;not null;index"`
	Ticker    string            `gorm:"type:varchar(16);index"`
	Embedding pgvector.Vector   `gorm:"type:vector(768)"` // Gemini text-embedding-004 uses 768 dimensions
	CreatedAt time.Time         `gorm:"autoCreateTime"`
}

func (VectorEntry) TableName() string {
	return "vector_entries"
}

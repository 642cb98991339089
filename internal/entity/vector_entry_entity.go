package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	MetadataSource = "source"
	MetadataTicker = "ticker"
)

// VectorEntry is one embedded document in the vector index.
type VectorEntry struct {
	Id        uuid.UUID
	Content   string
	Metadata  map[string]interface{}
	Embedding []float32
	CreatedAt time.Time
}

// MetadataString returns a string metadata value or "" when absent.
func (e *VectorEntry) MetadataString(key string) string {
	if e == nil || e.Metadata == nil {
		return ""
	}
	if v, ok := e.Metadata[key].(string); ok {
		return v
	}
	return ""
}

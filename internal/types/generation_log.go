package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GenerationLog is the server-side record of one synthesis call. The client
// contract replaces results in full; this table keeps the append-only history
// for the admin surface and debugging.
type GenerationLog struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"index;not null;column:user_id" json:"userId"`
	Format       string         `gorm:"not null;column:format" json:"format"`
	Tone         *string        `gorm:"column:tone" json:"tone"`
	IsRefinement bool           `gorm:"not null;default:false;column:is_refinement" json:"isRefinement"`
	Content      string         `gorm:"type:text;not null;column:content" json:"content"`
	Insights     datatypes.JSON `gorm:"column:insights" json:"insights"`
	LatencyMS    int64          `gorm:"not null;column:latency_ms" json:"latencyMs"`
	CreatedAt    time.Time      `gorm:"not null" json:"createdAt"`
}

func (GenerationLog) TableName() string {
	return "generation_log"
}

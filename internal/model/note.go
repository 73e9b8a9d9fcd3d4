package model

import "github.com/haierkeys/note-rpc-service/pkg/timex"

// Note mapped from table <notes>
// The table name comes from the naming strategy so database.table-prefix applies.
type Note struct {
	ID        string     `gorm:"column:id;primaryKey;size:36" json:"id" form:"id"`
	Title     string     `gorm:"column:title;not null;uniqueIndex:idx_notes_title;size:255" json:"title" form:"title"`
	Content   string     `gorm:"column:content;type:text;not null" json:"content" form:"content"`
	Category  *string    `gorm:"column:category;size:255" json:"category" form:"category"`
	Published int64      `gorm:"column:published;not null;default:0" json:"published" form:"published"`
	CreatedAt timex.Time `gorm:"column:createdAt;type:varchar(32);not null;index:idx_notes_created_at;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt timex.Time `gorm:"column:updatedAt;type:varchar(32);not null;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
}

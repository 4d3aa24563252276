package models

import "time"

// Note is one unit of stored knowledge: a single chunk of an ingested
// document. The row id doubles as the vector entry id in Chroma (string
// form), which is the only link between the two stores.
type Note struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Source    string    `gorm:"index" json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (Note) TableName() string {
	return "notes"
}

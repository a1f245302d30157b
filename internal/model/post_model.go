package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostModel struct {
	ID             string     `gorm:"type:uuid;primary_key" json:"id"`
	Title          string     `gorm:"type:varchar(255);not null" json:"title"`
	Content        string     `gorm:"type:text" json:"content"`
	ImageURL       string     `gorm:"type:varchar(500)" json:"image_url"`
	Status         string     `gorm:"type:varchar(40);not null;default:'Draft';index" json:"status"`
	ScheduledTime  *time.Time `gorm:"index" json:"scheduled_time"`
	PostedTime     *time.Time `json:"posted_time"`
	PublishedURL   string     `gorm:"type:varchar(500)" json:"published_url"`
	RevisionPrompt string     `gorm:"type:text" json:"revision_prompt"`
	RevisionType   string     `gorm:"type:varchar(20)" json:"revision_type"`
	Notes          string     `gorm:"type:text;not null;default:''" json:"notes"`
	Topic          string     `gorm:"type:varchar(100)" json:"topic"`
	Source         string     `gorm:"type:varchar(100)" json:"source"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (PostModel) TableName() string {
	return "posts"
}

func (p *PostModel) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

package persistent

import (
	"fmt"

	"github.com/musacbusiness/linkedin-post-manager/internal/entity"
	"github.com/musacbusiness/linkedin-post-manager/internal/model"
)

// ToPostEntity rejects records carrying status or revision-type strings
// outside the closed enums; business logic never sees raw strings.
func ToPostEntity(m *model.PostModel) (*entity.Post, error) {
	if m == nil {
		return nil, nil
	}

	status, err := entity.ParseStatus(m.Status)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", m.ID, err)
	}

	var revisionType entity.RevisionType
	if m.RevisionType != "" {
		revisionType, err = entity.ParseRevisionType(m.RevisionType)
		if err != nil {
			return nil, fmt.Errorf("post %s: %w", m.ID, err)
		}
	}

	return &entity.Post{
		ID:             m.ID,
		Title:          m.Title,
		Content:        m.Content,
		ImageURL:       m.ImageURL,
		Status:         status,
		ScheduledTime:  m.ScheduledTime,
		PostedTime:     m.PostedTime,
		PublishedURL:   m.PublishedURL,
		RevisionPrompt: m.RevisionPrompt,
		RevisionType:   revisionType,
		Notes:          m.Notes,
		Topic:          m.Topic,
		Source:         m.Source,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}, nil
}

func ToPostEntities(models []model.PostModel) ([]*entity.Post, error) {
	posts := make([]*entity.Post, 0, len(models))
	for i := range models {
		post, err := ToPostEntity(&models[i])
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func ToPostModel(e *entity.Post) *model.PostModel {
	if e == nil {
		return nil
	}

	return &model.PostModel{
		ID:             e.ID,
		Title:          e.Title,
		Content:        e.Content,
		ImageURL:       e.ImageURL,
		Status:         string(e.Status),
		ScheduledTime:  e.ScheduledTime,
		PostedTime:     e.PostedTime,
		PublishedURL:   e.PublishedURL,
		RevisionPrompt: e.RevisionPrompt,
		RevisionType:   string(e.RevisionType),
		Notes:          e.Notes,
		Topic:          e.Topic,
		Source:         e.Source,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

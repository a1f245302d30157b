package persistent

import (
	"errors"
	"time"

	"github.com/musacbusiness/linkedin-post-manager/internal/apperr"
	"github.com/musacbusiness/linkedin-post-manager/internal/entity"
	"github.com/musacbusiness/linkedin-post-manager/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostRepository interface {
	Create(post *entity.Post) error
	GetByID(id string) (*entity.Post, error)
	List() ([]*entity.Post, error)
	ListByStatuses(statuses []entity.PostStatus) ([]*entity.Post, error)
	ListScheduledBetween(start, end time.Time) ([]*entity.Post, error)
	// UpdateFields applies all given column values as one combined write and
	// refreshes updated_at, so multi-field mutations never leave a
	// partial-update window.
	UpdateFields(id string, fields map[string]interface{}) (*entity.Post, error)
	Delete(id string) error
	Count() (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(post *entity.Post) error {
	postModel := ToPostModel(post)
	if postModel.ID == "" {
		postModel.ID = uuid.New().String()
	}

	if err := r.db.Create(postModel).Error; err != nil {
		return storeErr(err, "create post")
	}

	created, err := ToPostEntity(postModel)
	if err != nil {
		return err
	}
	*post = *created
	return nil
}

func (r *postRepository) GetByID(id string) (*entity.Post, error) {
	var postModel model.PostModel
	if err := r.db.Where("id = ?", id).First(&postModel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.KindNotFound, "post %s not found", id)
		}
		return nil, storeErr(err, "fetch post")
	}
	return ToPostEntity(&postModel)
}

func (r *postRepository) List() ([]*entity.Post, error) {
	var postModels []model.PostModel
	if err := r.db.Order("created_at DESC").Find(&postModels).Error; err != nil {
		return nil, storeErr(err, "list posts")
	}
	return ToPostEntities(postModels)
}

func (r *postRepository) ListByStatuses(statuses []entity.PostStatus) ([]*entity.Post, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}

	var postModels []model.PostModel
	if err := r.db.Where("status IN ?", values).Order("created_at DESC").Find(&postModels).Error; err != nil {
		return nil, storeErr(err, "list posts by status")
	}
	return ToPostEntities(postModels)
}

func (r *postRepository) ListScheduledBetween(start, end time.Time) ([]*entity.Post, error) {
	var postModels []model.PostModel
	err := r.db.
		Where("status = ?", string(entity.StatusScheduled)).
		Where("scheduled_time >= ? AND scheduled_time <= ?", start, end).
		Order("scheduled_time ASC").
		Find(&postModels).Error
	if err != nil {
		return nil, storeErr(err, "list scheduled posts")
	}
	return ToPostEntities(postModels)
}

func (r *postRepository) UpdateFields(id string, fields map[string]interface{}) (*entity.Post, error) {
	updates := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		updates[k] = v
	}
	updates["updated_at"] = time.Now().UTC()

	result := r.db.Model(&model.PostModel{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, storeErr(result.Error, "update post")
	}
	if result.RowsAffected == 0 {
		return nil, apperr.New(apperr.KindNotFound, "post %s not found", id)
	}

	return r.GetByID(id)
}

func (r *postRepository) Delete(id string) error {
	result := r.db.Delete(&model.PostModel{}, "id = ?", id)
	if result.Error != nil {
		return storeErr(result.Error, "delete post")
	}
	if result.RowsAffected == 0 {
		return apperr.New(apperr.KindNotFound, "post %s not found", id)
	}
	return nil
}

func (r *postRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&model.PostModel{}).Count(&count).Error; err != nil {
		return 0, storeErr(err, "count posts")
	}
	return count, nil
}

func storeErr(err error, op string) error {
	return apperr.Wrap(apperr.KindStoreUnavailable, err, "%s", op)
}

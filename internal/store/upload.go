package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/docuflow/doc-scanner/internal/store/model"
)

type Upload interface {
	List(ctx context.Context, filter *UploadQueryFilter, opts *UploadQueryOptions) (model.UploadList, error)
	Get(ctx context.Context, id uint) (*model.Upload, error)
	Create(ctx context.Context, upload model.Upload) (*model.Upload, error)
	Update(ctx context.Context, id uint, fields map[string]any) (*model.Upload, error)
	Delete(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type UploadStore struct {
	db *gorm.DB
}

// Make sure we conform to Upload interface
var _ Upload = (*UploadStore)(nil)

func NewUploadStore(db *gorm.DB) Upload {
	return &UploadStore{db: db}
}

func (u *UploadStore) List(ctx context.Context, filter *UploadQueryFilter, opts *UploadQueryOptions) (model.UploadList, error) {
	var uploads model.UploadList
	tx := u.db.WithContext(ctx).Model(&uploads)

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}
	if opts != nil {
		for _, fn := range opts.QueryFn {
			tx = fn(tx)
		}
	}

	result := tx.Find(&uploads)
	if result.Error != nil {
		return nil, result.Error
	}
	return uploads, nil
}

func (u *UploadStore) Get(ctx context.Context, id uint) (*model.Upload, error) {
	var upload model.Upload
	result := u.db.WithContext(ctx).First(&upload, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &upload, nil
}

func (u *UploadStore) Create(ctx context.Context, upload model.Upload) (*model.Upload, error) {
	result := u.db.WithContext(ctx).Clauses(clause.Returning{}).Create(&upload)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &upload, nil
}

// Update writes all fields in one statement so that status and result
// columns land together.
func (u *UploadStore) Update(ctx context.Context, id uint, fields map[string]any) (*model.Upload, error) {
	result := u.db.WithContext(ctx).Model(&model.Upload{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}
	return u.Get(ctx, id)
}

func (u *UploadStore) Delete(ctx context.Context, id uint) error {
	result := u.db.WithContext(ctx).Unscoped().Delete(&model.Upload{}, "id = ?", id)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}
	return nil
}

func (u *UploadStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Status string
		Count  int
	}
	result := u.db.WithContext(ctx).Model(&model.Upload{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

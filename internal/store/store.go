package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/docuflow/doc-scanner/internal/store/model"
)

type Store interface {
	Upload() Upload
	Ping(ctx context.Context) error
	InitialMigration() error
	Close() error
}

type DataStore struct {
	db     *gorm.DB
	upload Upload
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		db:     db,
		upload: NewUploadStore(db),
	}
}

func (s *DataStore) Upload() Upload {
	return s.upload
}

func (s *DataStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// InitialMigration creates the schema directly from the models. The pgsql
// deployment path runs versioned SQL migrations instead (pkg/migrations).
func (s *DataStore) InitialMigration() error {
	return s.db.AutoMigrate(&model.Upload{})
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

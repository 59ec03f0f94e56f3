// Package storetest provides an in-memory store.Store for tests that do
// not want a database behind them.
package storetest

import (
	"context"
	"sort"
	"sync"

	"github.com/docuflow/doc-scanner/internal/store"
	"github.com/docuflow/doc-scanner/internal/store/model"
)

type FakeStore struct {
	upload *FakeUploadStore
}

var _ store.Store = (*FakeStore)(nil)

func NewFakeStore() *FakeStore {
	return &FakeStore{upload: newFakeUploadStore()}
}

func (s *FakeStore) Upload() store.Upload           { return s.upload }
func (s *FakeStore) Ping(ctx context.Context) error { return nil }
func (s *FakeStore) InitialMigration() error        { return nil }
func (s *FakeStore) Close() error                   { return nil }

// Uploads returns the typed fake for seeding and fault injection.
func (s *FakeStore) Uploads() *FakeUploadStore { return s.upload }

type FakeUploadStore struct {
	mu      sync.Mutex
	nextID  uint
	records map[uint]model.Upload

	// Err, when set, is returned by every operation.
	Err error
}

var _ store.Upload = (*FakeUploadStore)(nil)

func newFakeUploadStore() *FakeUploadStore {
	return &FakeUploadStore{nextID: 1, records: make(map[uint]model.Upload)}
}

// Seed inserts a record as-is, assigning an id when missing.
func (u *FakeUploadStore) Seed(upload model.Upload) model.Upload {
	u.mu.Lock()
	defer u.mu.Unlock()
	if upload.ID == 0 {
		upload.ID = u.nextID
		u.nextID++
	} else if upload.ID >= u.nextID {
		u.nextID = upload.ID + 1
	}
	u.records[upload.ID] = upload
	return upload
}

// Snapshot returns a copy of the stored record, or nil.
func (u *FakeUploadStore) Snapshot(id uint) *model.Upload {
	u.mu.Lock()
	defer u.mu.Unlock()
	if record, ok := u.records[id]; ok {
		return &record
	}
	return nil
}

// List ignores the gorm query closures and applies the only filter the
// code under test uses: all records when filter is nil, pending records
// otherwise.
func (u *FakeUploadStore) List(ctx context.Context, filter *store.UploadQueryFilter, opts *store.UploadQueryOptions) (model.UploadList, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}

	var uploads model.UploadList
	for _, record := range u.records {
		if filter != nil && record.Status != model.UploadStatusPending {
			continue
		}
		uploads = append(uploads, record)
	}
	sort.Slice(uploads, func(i, j int) bool { return uploads[i].ID < uploads[j].ID })
	return uploads, nil
}

func (u *FakeUploadStore) Get(ctx context.Context, id uint) (*model.Upload, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}
	record, ok := u.records[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	return &record, nil
}

func (u *FakeUploadStore) Create(ctx context.Context, upload model.Upload) (*model.Upload, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}
	upload.ID = u.nextID
	u.nextID++
	u.records[upload.ID] = upload
	return &upload, nil
}

func (u *FakeUploadStore) Update(ctx context.Context, id uint, fields map[string]any) (*model.Upload, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}
	record, ok := u.records[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}

	for column, value := range fields {
		switch column {
		case "status":
			record.Status = value.(string)
		case "extracted_data":
			if value == nil {
				record.ExtractedData = nil
			} else {
				record.ExtractedData = value.([]byte)
			}
		case "error_message":
			if value == nil {
				record.ErrorMessage = nil
			} else {
				message := value.(string)
				record.ErrorMessage = &message
			}
		}
	}
	u.records[id] = record
	return &record, nil
}

func (u *FakeUploadStore) Delete(ctx context.Context, id uint) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return u.Err
	}
	delete(u.records, id)
	return nil
}

func (u *FakeUploadStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.Err != nil {
		return nil, u.Err
	}
	counts := make(map[string]int)
	for _, record := range u.records {
		counts[record.Status]++
	}
	return counts, nil
}

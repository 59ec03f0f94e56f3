package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/docuflow/doc-scanner/internal/store"
	"github.com/docuflow/doc-scanner/internal/store/model"
)

func TestStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Store Suite")
}

var _ = Describe("upload store", Ordered, func() {
	var (
		s      store.Store
		gormDB *gorm.DB
	)

	BeforeAll(func() {
		var err error
		dbPath := filepath.Join(GinkgoT().TempDir(), "uploads.db")
		gormDB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{TranslateError: true})
		Expect(err).To(BeNil())

		s = store.NewStore(gormDB)
		Expect(s.InitialMigration()).To(BeNil())
	})

	AfterAll(func() {
		Expect(s.Close()).To(BeNil())
	})

	AfterEach(func() {
		gormDB.Exec("DELETE FROM uploads")
	})

	newUpload := func(filename, status string, uploadTime time.Time) model.Upload {
		return model.Upload{
			Filename:   filename,
			FileSize:   42,
			MediaType:  "application/pdf",
			UploadTime: uploadTime,
			Status:     status,
			RawContent: []byte("%PDF-1.7"),
		}
	}

	Context("create", func() {
		It("assigns an id and persists the record", func() {
			created, err := s.Upload().Create(context.TODO(), newUpload("a.pdf", model.UploadStatusPending, time.Now().UTC()))
			Expect(err).To(BeNil())
			Expect(created.ID).NotTo(BeZero())

			fetched, err := s.Upload().Get(context.TODO(), created.ID)
			Expect(err).To(BeNil())
			Expect(fetched.Filename).To(Equal("a.pdf"))
			Expect(fetched.Status).To(Equal(model.UploadStatusPending))
			Expect(fetched.RawContent).To(Equal([]byte("%PDF-1.7")))
		})
	})

	Context("get", func() {
		It("returns a typed error when the record does not exist", func() {
			_, err := s.Upload().Get(context.TODO(), 999)
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("list", func() {
		It("filters by status", func() {
			_, err := s.Upload().Create(context.TODO(), newUpload("p.pdf", model.UploadStatusPending, time.Now().UTC()))
			Expect(err).To(BeNil())
			_, err = s.Upload().Create(context.TODO(), newUpload("c.pdf", model.UploadStatusCompleted, time.Now().UTC()))
			Expect(err).To(BeNil())

			pending, err := s.Upload().List(context.TODO(),
				store.NewUploadQueryFilter().ByStatus(model.UploadStatusPending), nil)
			Expect(err).To(BeNil())
			Expect(pending).To(HaveLen(1))
			Expect(pending[0].Filename).To(Equal("p.pdf"))
		})

		It("sorts newest first when asked", func() {
			older := time.Now().UTC().Add(-time.Hour)
			newer := time.Now().UTC()
			_, err := s.Upload().Create(context.TODO(), newUpload("old.pdf", model.UploadStatusPending, older))
			Expect(err).To(BeNil())
			_, err = s.Upload().Create(context.TODO(), newUpload("new.pdf", model.UploadStatusPending, newer))
			Expect(err).To(BeNil())

			uploads, err := s.Upload().List(context.TODO(), nil,
				store.NewUploadQueryOptions().WithSortOrder(store.SortByUploadTimeDesc))
			Expect(err).To(BeNil())
			Expect(uploads).To(HaveLen(2))
			Expect(uploads[0].Filename).To(Equal("new.pdf"))
		})

		It("limits the result set", func() {
			for _, name := range []string{"1.pdf", "2.pdf", "3.pdf"} {
				_, err := s.Upload().Create(context.TODO(), newUpload(name, model.UploadStatusPending, time.Now().UTC()))
				Expect(err).To(BeNil())
			}

			uploads, err := s.Upload().List(context.TODO(), nil,
				store.NewUploadQueryOptions().WithLimit(2))
			Expect(err).To(BeNil())
			Expect(uploads).To(HaveLen(2))
		})
	})

	Context("update", func() {
		It("writes status and result columns together", func() {
			created, err := s.Upload().Create(context.TODO(), newUpload("u.pdf", model.UploadStatusAnalyzing, time.Now().UTC()))
			Expect(err).To(BeNil())

			updated, err := s.Upload().Update(context.TODO(), created.ID, map[string]any{
				"status":         model.UploadStatusCompleted,
				"extracted_data": []byte(`{"page_count":3}`),
				"error_message":  nil,
			})
			Expect(err).To(BeNil())
			Expect(updated.Status).To(Equal(model.UploadStatusCompleted))
			Expect(updated.ExtractedData).To(Equal([]byte(`{"page_count":3}`)))
			Expect(updated.ErrorMessage).To(BeNil())
		})

		It("records a failure message and clears stale data", func() {
			created, err := s.Upload().Create(context.TODO(), newUpload("f.pdf", model.UploadStatusAnalyzing, time.Now().UTC()))
			Expect(err).To(BeNil())

			updated, err := s.Upload().Update(context.TODO(), created.ID, map[string]any{
				"status":         model.UploadStatusFailed,
				"error_message":  "unreadable stream",
				"extracted_data": nil,
			})
			Expect(err).To(BeNil())
			Expect(updated.Status).To(Equal(model.UploadStatusFailed))
			Expect(updated.ErrorMessage).NotTo(BeNil())
			Expect(*updated.ErrorMessage).To(Equal("unreadable stream"))
			Expect(updated.ExtractedData).To(BeNil())
		})

		It("returns a typed error for a missing record", func() {
			_, err := s.Upload().Update(context.TODO(), 999, map[string]any{
				"status": model.UploadStatusFailed,
			})
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("delete", func() {
		It("removes the record", func() {
			created, err := s.Upload().Create(context.TODO(), newUpload("d.pdf", model.UploadStatusCompleted, time.Now().UTC()))
			Expect(err).To(BeNil())

			Expect(s.Upload().Delete(context.TODO(), created.ID)).To(BeNil())

			_, err = s.Upload().Get(context.TODO(), created.ID)
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})

		It("tolerates a missing record", func() {
			Expect(s.Upload().Delete(context.TODO(), 999)).To(BeNil())
		})
	})

	Context("count by status", func() {
		It("groups the records", func() {
			for _, status := range []string{
				model.UploadStatusPending,
				model.UploadStatusPending,
				model.UploadStatusFailed,
			} {
				_, err := s.Upload().Create(context.TODO(), newUpload("x.pdf", status, time.Now().UTC()))
				Expect(err).To(BeNil())
			}

			counts, err := s.Upload().CountByStatus(context.TODO())
			Expect(err).To(BeNil())
			Expect(counts).To(HaveKeyWithValue(model.UploadStatusPending, 2))
			Expect(counts).To(HaveKeyWithValue(model.UploadStatusFailed, 1))
			Expect(counts).NotTo(HaveKey(model.UploadStatusCompleted))
		})
	})
})

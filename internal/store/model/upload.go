package model

import (
	"encoding/json"
	"time"
)

// Upload statuses. A record moves pending -> analyzing -> completed|failed
// within one processing pass. Deletion removes the record entirely; the
// "deleted" status only ever appears in push events.
const (
	UploadStatusPending   = "pending"
	UploadStatusAnalyzing = "analyzing"
	UploadStatusCompleted = "completed"
	UploadStatusFailed    = "failed"
	UploadStatusDeleted   = "deleted"
)

type Upload struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	Filename      string    `gorm:"type:VARCHAR(500);not null"`
	FileSize      int64     `gorm:"not null"`
	MediaType     string    `gorm:"type:VARCHAR(100);not null"`
	UploadTime    time.Time `gorm:"not null;index"`
	Status        string    `gorm:"type:VARCHAR(50);not null;default:pending;index"`
	RawContent    []byte    `gorm:"not null" json:"-"`
	ExtractedData []byte    `gorm:"type:jsonb"`
	ErrorMessage  *string   `gorm:"type:TEXT"`
}

type UploadList []Upload

// Data decodes the extracted payload. Returns nil when nothing has been
// extracted yet or the stored payload is unreadable.
func (u Upload) Data() map[string]any {
	if len(u.ExtractedData) == 0 {
		return nil
	}
	var data map[string]any
	if err := json.Unmarshal(u.ExtractedData, &data); err != nil {
		return nil
	}
	return data
}

func (u Upload) String() string {
	val, _ := json.Marshal(u)
	return string(val)
}

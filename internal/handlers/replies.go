package handlers

import (
	"net/http"
	"time"

	"github.com/docuflow/doc-scanner/internal/store/model"
)

type UploadReply struct {
	ID            uint           `json:"id"`
	Filename      string         `json:"filename"`
	FileSize      int64          `json:"file_size"`
	FileType      string         `json:"file_type"`
	Status        string         `json:"status"`
	UploadTime    string         `json:"upload_time"`
	ExtractedData map[string]any `json:"extracted_data"`
	ErrorMessage  *string        `json:"error_message"`
}

type UploadListReply struct {
	Files []UploadReply `json:"files"`
}

type BatchAnalyzeReply struct {
	Success              bool   `json:"success"`
	Message              string `json:"message"`
	ProcessingCount      int    `json:"processing_count"`
	FileIDs              []uint `json:"file_ids"`
	EstimatedTimeSeconds int    `json:"estimated_time_seconds"`
}

type DeleteReply struct {
	ID      uint   `json:"id"`
	Message string `json:"message"`
}

type HealthReply struct {
	Status     string         `json:"status"`
	Database   string         `json:"database"`
	FileCounts map[string]int `json:"file_counts,omitempty"`
	Error      string         `json:"error,omitempty"`
}

type ErrorReply struct {
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func (u UploadReply) Render(w http.ResponseWriter, r *http.Request) error     { return nil }
func (u UploadListReply) Render(w http.ResponseWriter, r *http.Request) error { return nil }
func (b BatchAnalyzeReply) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}
func (d DeleteReply) Render(w http.ResponseWriter, r *http.Request) error { return nil }
func (h HealthReply) Render(w http.ResponseWriter, r *http.Request) error { return nil }
func (e ErrorReply) Render(w http.ResponseWriter, r *http.Request) error  { return nil }

func uploadToReply(upload model.Upload) UploadReply {
	return UploadReply{
		ID:            upload.ID,
		Filename:      upload.Filename,
		FileSize:      upload.FileSize,
		FileType:      upload.MediaType,
		Status:        upload.Status,
		UploadTime:    upload.UploadTime.Format(time.RFC3339),
		ExtractedData: upload.Data(),
		ErrorMessage:  upload.ErrorMessage,
	}
}

func uploadListToReply(uploads model.UploadList) UploadListReply {
	files := make([]UploadReply, 0, len(uploads))
	for _, upload := range uploads {
		files = append(files, uploadToReply(upload))
	}
	return UploadListReply{Files: files}
}

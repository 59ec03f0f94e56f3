package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/docuflow/doc-scanner/internal/jobs"
	"github.com/docuflow/doc-scanner/internal/service"
	"github.com/docuflow/doc-scanner/pkg/requestid"
)

type ServiceHandler struct {
	uploadSrv *service.UploadService
	runner    *jobs.Runner
}

func NewServiceHandler(uploadSrv *service.UploadService, runner *jobs.Runner) *ServiceHandler {
	return &ServiceHandler{
		uploadSrv: uploadSrv,
		runner:    runner,
	}
}

func (h *ServiceHandler) RegisterRoutes(router chi.Router) {
	router.Route("/api/v1/uploads", func(r chi.Router) {
		r.Post("/", h.CreateUpload)
		r.Get("/", h.ListUploads)
		r.Post("/analyze", h.AnalyzePending)
		r.Get("/export", h.ExportUploads)
		r.Get("/{id}", h.GetUpload)
		r.Delete("/{id}", h.DeleteUpload)
	})
}

// (POST /api/v1/uploads)
func (h *ServiceHandler) CreateUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, fmt.Sprintf("missing file field: %v", err))
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to read file: %v", err))
		return
	}

	mediaType := header.Header.Get("Content-Type")
	if mediaType == "" {
		mediaType = "application/pdf"
	}

	upload, err := h.uploadSrv.CreateUpload(r.Context(), service.UploadForm{
		Filename:  header.Filename,
		MediaType: mediaType,
		Content:   content,
	})
	if err != nil {
		switch err.(type) {
		case *service.ErrInvalidUpload:
			h.renderError(w, r, http.StatusBadRequest, err.Error())
		default:
			zap.S().Named("handlers").Errorw("upload failed", "error", err)
			h.renderError(w, r, http.StatusInternalServerError, err.Error())
		}
		return
	}

	render.Status(r, http.StatusCreated)
	_ = render.Render(w, r, uploadToReply(*upload))
}

// (GET /api/v1/uploads)
func (h *ServiceHandler) ListUploads(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.uploadSrv.ListUploads(r.Context())
	if err != nil {
		zap.S().Named("handlers").Errorw("list uploads failed", "error", err)
		h.renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	_ = render.Render(w, r, uploadListToReply(uploads))
}

// (GET /api/v1/uploads/{id})
func (h *ServiceHandler) GetUpload(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uploadID(w, r)
	if !ok {
		return
	}

	upload, err := h.uploadSrv.GetUpload(r.Context(), id)
	if err != nil {
		switch err.(type) {
		case *service.ErrResourceNotFound:
			h.renderError(w, r, http.StatusNotFound, err.Error())
		default:
			zap.S().Named("handlers").Errorw("get upload failed", "file_id", id, "error", err)
			h.renderError(w, r, http.StatusInternalServerError, err.Error())
		}
		return
	}

	_ = render.Render(w, r, uploadToReply(*upload))
}

// (DELETE /api/v1/uploads/{id})
func (h *ServiceHandler) DeleteUpload(w http.ResponseWriter, r *http.Request) {
	id, ok := h.uploadID(w, r)
	if !ok {
		return
	}

	if err := h.uploadSrv.DeleteUpload(r.Context(), id); err != nil {
		switch err.(type) {
		case *service.ErrResourceNotFound:
			h.renderError(w, r, http.StatusNotFound, err.Error())
		default:
			zap.S().Named("handlers").Errorw("delete upload failed", "file_id", id, "error", err)
			h.renderError(w, r, http.StatusInternalServerError, err.Error())
		}
		return
	}

	_ = render.Render(w, r, DeleteReply{ID: id, Message: "File deleted successfully"})
}

// (POST /api/v1/uploads/analyze)
//
// Schedules a background task per pending upload and returns immediately
// with an estimate. Per-file completion is observable on the push channel
// or by polling the record, never in this response.
func (h *ServiceHandler) AnalyzePending(w http.ResponseWriter, r *http.Request) {
	result, err := h.runner.EnqueuePendingBatch(r.Context())
	if err != nil {
		zap.S().Named("handlers").Errorw("batch trigger failed", "error", err)
		h.renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	if result.Count == 0 {
		_ = render.Render(w, r, BatchAnalyzeReply{
			Success: false,
			Message: "No pending files to analyze",
			FileIDs: []uint{},
		})
		return
	}

	_ = render.Render(w, r, BatchAnalyzeReply{
		Success:              true,
		Message:              fmt.Sprintf("Analysis started for %d file(s)", result.Count),
		ProcessingCount:      result.Count,
		FileIDs:              result.ScheduledIDs,
		EstimatedTimeSeconds: result.EstimatedSeconds,
	})
}

func (h *ServiceHandler) uploadID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid upload id %q", raw))
		return 0, false
	}
	return uint(id), true
}

func (h *ServiceHandler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	_ = render.Render(w, r, ErrorReply{Message: message, RequestID: requestid.FromRequest(r)})
}

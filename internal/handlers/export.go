package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var exportColumns = []string{"ID", "Filename", "Size", "Media Type", "Status", "Upload Time", "Extracted Data", "Error"}

// (GET /api/v1/uploads/export)
//
// Streams the upload records as a spreadsheet, newest first.
func (h *ServiceHandler) ExportUploads(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.uploadSrv.ListUploads(r.Context())
	if err != nil {
		zap.S().Named("handlers").Errorw("export failed", "error", err)
		h.renderError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	for i, column := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, column)
	}

	for i, upload := range uploads {
		row := i + 2
		var extracted string
		if data := upload.Data(); data != nil {
			raw, _ := json.Marshal(data)
			extracted = string(raw)
		}
		var errMsg string
		if upload.ErrorMessage != nil {
			errMsg = *upload.ErrorMessage
		}

		values := []any{
			upload.ID,
			upload.Filename,
			upload.FileSize,
			upload.MediaType,
			upload.Status,
			upload.UploadTime.Format(time.RFC3339),
			extracted,
			errMsg,
		}
		for j, value := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			_ = f.SetCellValue(sheet, cell, value)
		}
	}

	filename := fmt.Sprintf("uploads-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := f.Write(w); err != nil {
		zap.S().Named("handlers").Errorw("failed to write spreadsheet", "error", err)
	}
}

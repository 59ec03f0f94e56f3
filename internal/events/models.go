package events

import "time"

// Event types pushed to websocket subscribers.
const (
	TypeFileStatus       = "file_status"
	TypeAnalysisProgress = "analysis_progress"
	TypePong             = "pong"
)

// FileStatusEvent is emitted on every status transition of an upload,
// including initial upload and deletion.
type FileStatusEvent struct {
	Type      string         `json:"type"`
	FileID    uint           `json:"file_id"`
	Status    string         `json:"status"`
	Data      map[string]any `json:"data"`
	Timestamp float64        `json:"timestamp"`
}

// AnalysisProgressEvent is an advisory progress hint emitted at fixed
// checkpoints while one extraction task runs.
type AnalysisProgressEvent struct {
	Type      string  `json:"type"`
	FileID    uint    `json:"file_id"`
	Progress  int     `json:"progress"`
	Message   string  `json:"message"`
	Timestamp float64 `json:"timestamp"`
}

// PongReply answers a subscriber's "ping" probe.
type PongReply struct {
	Type string `json:"type"`
}

func NewFileStatus(fileID uint, status string, data map[string]any) FileStatusEvent {
	if data == nil {
		data = map[string]any{}
	}
	return FileStatusEvent{
		Type:      TypeFileStatus,
		FileID:    fileID,
		Status:    status,
		Data:      data,
		Timestamp: now(),
	}
}

func NewAnalysisProgress(fileID uint, progress int, message string) AnalysisProgressEvent {
	return AnalysisProgressEvent{
		Type:      TypeAnalysisProgress,
		FileID:    fileID,
		Progress:  progress,
		Message:   message,
		Timestamp: now(),
	}
}

func NewPong() PongReply {
	return PongReply{Type: TypePong}
}

func now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/doc-scanner/internal/events"
)

func TestFileStatusEventShape(t *testing.T) {
	event := events.NewFileStatus(7, "completed", map[string]any{"filename": "a.pdf"})

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "file_status", decoded["type"])
	assert.Equal(t, float64(7), decoded["file_id"])
	assert.Equal(t, "completed", decoded["status"])
	assert.Contains(t, decoded, "data")
	assert.Contains(t, decoded, "timestamp")
}

func TestFileStatusEventDefaultsDataToEmptyObject(t *testing.T) {
	event := events.NewFileStatus(1, "pending", nil)

	payload, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"data":{}`)
}

func TestAnalysisProgressEventShape(t *testing.T) {
	event := events.NewAnalysisProgress(3, 30, "extracting")

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "analysis_progress", decoded["type"])
	assert.Equal(t, float64(30), decoded["progress"])
	assert.Equal(t, "extracting", decoded["message"])
}

func TestTimestampIsUnixSeconds(t *testing.T) {
	before := float64(time.Now().UnixNano()) / float64(time.Second)
	event := events.NewFileStatus(1, "pending", nil)
	after := float64(time.Now().UnixNano()) / float64(time.Second)

	assert.GreaterOrEqual(t, event.Timestamp, before)
	assert.LessOrEqual(t, event.Timestamp, after)
}

func TestPongReply(t *testing.T) {
	payload, err := json.Marshal(events.NewPong())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"pong"}`, string(payload))
}

package domain

import "time"

type SyncStatus string

const (
	SyncSuccess SyncStatus = "success"
	SyncError   SyncStatus = "error"
	SyncSkipped SyncStatus = "skipped"
)

// SyncResult is what one orchestrator run hands back to its caller.
type SyncResult struct {
	Status     SyncStatus `json:"status"`
	Synced     int        `json:"synced"`
	Failed     int        `json:"failed"`
	Total      int        `json:"total"`
	DurationMs int64      `json:"durationMs"`
	Error      string     `json:"error,omitempty"`
}

// SyncHistoryEntry is one row of the rolling sync log.
type SyncHistoryEntry struct {
	Timestamp  time.Time  `json:"timestamp"`
	Status     SyncStatus `json:"status"`
	Synced     int        `json:"synced"`
	Failed     int        `json:"failed"`
	Total      int        `json:"total"`
	DurationMs int64      `json:"durationMs"`
	Error      string     `json:"error,omitempty"`
}

// KVEntry is one key/value pair of a bulk cache write.
type KVEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// BulkResult counts the entries a bulk write stored and lost.
type BulkResult struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

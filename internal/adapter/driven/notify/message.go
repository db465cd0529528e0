package notify

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/google/uuid"
)

// EventRunCompleted is the event name of a finished aggregation run.
const EventRunCompleted = "gaa.aggregates.completed"

// RunCompletedMessage announces a finished aggregation run.
type RunCompletedMessage struct {
	Event     string         `json:"event"`
	RunID     string         `json:"run_id"`
	Source    string         `json:"source"`
	Levels    map[string]int `json:"levels"`
	Skipped   []string       `json:"skipped_levels,omitempty"`
	Files     []string       `json:"files"`
	Published []string       `json:"published,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewRunCompletedMessage builds the message of a run summary.
func NewRunCompletedMessage(summary *entity.RunSummary) *RunCompletedMessage {
	msg := &RunCompletedMessage{
		Event:     EventRunCompleted,
		RunID:     summary.RunID,
		Source:    summary.Source,
		Levels:    make(map[string]int, len(summary.Levels)),
		Files:     append([]string{}, summary.Files...),
		Published: summary.Published,
		Timestamp: time.Now().UTC(),
	}
	for _, l := range summary.Levels {
		if l.Skipped() {
			msg.Skipped = append(msg.Skipped, string(l.Level))
			continue
		}
		msg.Levels[string(l.Level)] = l.Entities
	}
	sort.Strings(msg.Skipped)
	return msg
}

func (m *RunCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// IndexBatchMessage carries one batch of documents for the search indexer.
type IndexBatchMessage struct {
	Index     string              `json:"index"`
	BatchID   string              `json:"batch_id"`
	Documents []map[string]string `json:"documents"`
}

func NewIndexBatchMessage(index string, docs []map[string]string) *IndexBatchMessage {
	return &IndexBatchMessage{Index: index, BatchID: uuid.NewString(), Documents: docs}
}

func (m *IndexBatchMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

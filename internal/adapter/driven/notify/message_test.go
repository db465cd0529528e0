package notify

import (
	"encoding/json"
	"testing"

	"github.com/bettergovph/transparency-dashboard/internal/domain/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunCompletedMessage(t *testing.T) {
	summary := &entity.RunSummary{
		RunID:  "3f0c",
		Source: "parquet:gaa.parquet",
		Levels: []entity.LevelSummary{
			{Level: entity.LevelDepartments, Entities: 2},
			{Level: entity.LevelAgencies, Entities: 5},
			{Level: entity.LevelObjects, Missing: []string{"uacs_sobj_cd"}},
		},
		Files: []string{"/out/departments.json", "/out/agencies.json"},
	}

	msg := NewRunCompletedMessage(summary)
	body, err := msg.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, EventRunCompleted, decoded["event"])
	assert.Equal(t, "3f0c", decoded["run_id"])
	assert.Equal(t, map[string]interface{}{"departments": float64(2), "agencies": float64(5)}, decoded["levels"])
	assert.Equal(t, []interface{}{"objects"}, decoded["skipped_levels"])
	assert.Len(t, decoded["files"], 2)
	assert.NotContains(t, decoded, "published")
}

func TestNewIndexBatchMessage(t *testing.T) {
	docs := []map[string]string{{"id": "1", "department": "07"}}
	msg := NewIndexBatchMessage("gaa", docs)

	_, err := uuid.Parse(msg.BatchID)
	require.NoError(t, err)

	body, err := msg.ToJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"index":"gaa","batch_id":"`+msg.BatchID+`","documents":[{"id":"1","department":"07"}]}`, string(body))

	other := NewIndexBatchMessage("gaa", docs)
	assert.NotEqual(t, msg.BatchID, other.BatchID)
}

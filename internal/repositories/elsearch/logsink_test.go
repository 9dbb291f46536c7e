package elsearch

import (
	"bufio"
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viksitkanpur/pkg/logger"
)

func TestBuildBulkBody(t *testing.T) {
	body, err := BuildBulkBody([]logger.LogEntry{
		{ID: "a", Message: "first", Level: logger.LevelInfo},
		{ID: "b", Message: "second", Level: logger.LevelWarn},
	})
	require.NoError(t, err)

	var lines []map[string]any
	sc := bufio.NewScanner(bytes.NewReader(body))
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		lines = append(lines, m)
	}

	require.Len(t, lines, 4)
	assert.Equal(t, "a", lines[0]["index"].(map[string]any)["_id"])
	assert.Equal(t, "first", lines[1]["message"])
	assert.Equal(t, "b", lines[2]["index"].(map[string]any)["_id"])
	assert.Equal(t, "WARN", lines[3]["level"])
}

func TestLogMappingIsJSON(t *testing.T) {
	assert.True(t, json.Valid(LogMapping))
}

package elsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"viksitkanpur/pkg/logger"
)

// LogMapping is the index mapping for shipped log entries
var LogMapping = []byte(`{
  "mappings": {
    "properties": {
      "@timestamp": {"type": "date"},
      "level": {"type": "keyword"},
      "message": {"type": "text"},
      "service": {"type": "keyword"},
      "environment": {"type": "keyword"},
      "exec_id": {"type": "keyword"},
      "http": {"properties": {
        "method": {"type": "keyword"},
        "path": {"type": "keyword"},
        "status_code": {"type": "integer"},
        "request_id": {"type": "keyword"}
      }},
      "user": {"properties": {
        "id": {"type": "keyword"},
        "role": {"type": "keyword"},
        "session_id": {"type": "keyword"}
      }}
    }
  }
}`)

// LogSink ships logger batches to the log index with the bulk API
type LogSink struct {
	client *Client
	index  string
}

// NewLogSink returns a sink writing to the client's log index
func NewLogSink(client *Client) *LogSink {
	return &LogSink{client: client, index: client.IndexName()}
}

// BuildBulkBody renders entries as NDJSON bulk index actions
func BuildBulkBody(entries []logger.LogEntry) ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range entries {
		meta := map[string]map[string]string{"index": {"_id": e.ID}}
		if err := json.NewEncoder(&buf).Encode(meta); err != nil {
			return nil, err
		}
		if err := json.NewEncoder(&buf).Encode(e); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// WriteBatch implements logger.Sink
func (s *LogSink) WriteBatch(ctx context.Context, entries []logger.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	body, err := BuildBulkBody(entries)
	if err != nil {
		return fmt.Errorf("encoding bulk body: %w", err)
	}

	es := s.client.ES
	res, err := es.Bulk(bytes.NewReader(body), es.Bulk.WithContext(ctx), es.Bulk.WithIndex(s.index))
	if err != nil {
		return err
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.IsError() {
		return fmt.Errorf("bulk request failed: %s", res.Status())
	}

	var reply struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&reply); err == nil && reply.Errors {
		return fmt.Errorf("bulk request had item errors")
	}
	return nil
}

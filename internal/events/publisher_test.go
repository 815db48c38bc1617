package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rronkkeli/md2htm/internal/config"
)

func TestNewNATSPublisherDisabled(t *testing.T) {
	if _, err := NewNATSPublisher(&config.EventsConfig{Enabled: false}); err == nil {
		t.Fatal("expected error for disabled events config")
	}
	if _, err := NewNATSPublisher(nil); err == nil {
		t.Fatal("expected error for nil events config")
	}
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	if err := p.PublishRender(context.Background(), &RenderEvent{RequestID: "r1"}); err != nil {
		t.Fatalf("PublishRender: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestRenderEventJSON(t *testing.T) {
	event := &RenderEvent{
		RequestID:  "abc",
		Source:     "socket",
		Outcome:    "success",
		Cache:      "miss",
		BytesIn:    10,
		BytesOut:   24,
		DurationMS: 3,
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"request_id", "source", "outcome", "cache", "bytes_in", "bytes_out", "duration_ms", "timestamp"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
}

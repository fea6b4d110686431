package eventlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventbus "github.com/hanpama/mongograph/internal/eventbus"
	events "github.com/hanpama/mongograph/internal/events"
	reqid "github.com/hanpama/mongograph/internal/reqid"
)

func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestRegister(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	unsubscribe := Register(logger)

	ctx, rid := reqid.NewContext(context.Background())
	eventbus.Publish(ctx, events.AugmentFinish{Entities: 2, Operations: 9, Duration: time.Millisecond})
	eventbus.Publish(ctx, events.ResolveFinish{ObjectType: "Query", Field: "findBooks"})
	eventbus.Publish(ctx, events.StoreFinish{Collection: "books", Method: "find", Err: errors.New("boom")})

	recs := records(t, &buf)
	require.Len(t, recs, 3)

	assert.Equal(t, "INFO", recs[0]["level"])
	assert.Equal(t, "schema augmented", recs[0]["msg"])
	assert.EqualValues(t, 9, recs[0]["operations"])

	assert.Equal(t, "DEBUG", recs[1]["level"])
	assert.Equal(t, "resolved", recs[1]["msg"])
	assert.Equal(t, rid, recs[1]["request_id"])
	assert.Equal(t, "findBooks", recs[1]["field"])

	assert.Equal(t, "ERROR", recs[2]["level"])
	assert.Equal(t, "store call failed", recs[2]["msg"])
	assert.Equal(t, "boom", recs[2]["error"])

	unsubscribe()
	buf.Reset()
	eventbus.Publish(ctx, events.AugmentFinish{})
	assert.Empty(t, buf.String())
}

func TestFailuresLogAtErrorLevel(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	var buf bytes.Buffer
	defer Register(slog.New(slog.NewJSONHandler(&buf, nil)))()

	eventbus.Publish(context.Background(), events.ResolveFinish{Field: "findBooks"})
	eventbus.Publish(context.Background(), events.AugmentFinish{Err: errors.New("duplicate entity")})

	recs := records(t, &buf)
	require.Len(t, recs, 1, "debug records are filtered at info level")
	assert.Equal(t, "augment failed", recs[0]["msg"])
	assert.Equal(t, "duplicate entity", recs[0]["error"])
}

package progrock_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.trai.ch/sheen/internal/adapters/telemetry/progrock"
	"go.trai.ch/sheen/internal/core/domain"
	"go.trai.ch/sheen/internal/core/ports"
)

func TestRecorder_RecordsVertices(t *testing.T) {
	rec := progrock.New()
	ctx := context.Background()

	ctx, v := rec.Record(ctx, "src/app.scss", ports.WithGroup("transform"))
	got, ok := ports.VertexFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, v, got)

	_, err := v.Stdout().Write([]byte("compiled\n"))
	require.NoError(t, err)
	v.Log(domain.LogLevelDebug, "debug")
	v.Log(domain.LogLevelWarn, "warn")
	v.Complete(nil)

	_, cached := rec.Record(context.Background(), "src/b.css")
	cached.Cached()
	cached.Complete(nil)

	_, failed := rec.Record(context.Background(), "app.css", ports.WithGroup("chunk"))
	failed.Complete(errors.New("minify failed"))

	assert.NoError(t, rec.Close())
}

func TestStream_ReadsUpdatesInOrder(t *testing.T) {
	stream := progrock.NewStream()
	rec := progrock.NewRecorder(stream)

	_, v := rec.Record(context.Background(), "a.css", ports.WithGroup("units"))
	v.Complete(nil)
	require.NoError(t, rec.Close())

	var completed bool
	for {
		update, err := stream.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		for _, vtx := range update.Vertexes {
			if vtx.Name == "a.css" && vtx.Completed != nil {
				completed = true
			}
		}
	}
	assert.True(t, completed)

	require.ErrorIs(t, stream.WriteStatus(nil), io.ErrClosedPipe)
}

package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/pobar/internal/engine"
	"github.com/MeKo-Tech/pobar/internal/engine/enginetest"
	tu "github.com/MeKo-Tech/pobar/internal/testutil"
)

func TestRecorder_CountsBoundaryCalls(t *testing.T) {
	dir := t.TempDir()
	found := tu.WriteFile(t, filepath.Join(dir, "found.png"), "x")
	empty := tu.WriteFile(t, filepath.Join(dir, "empty.png"), "x")
	null := tu.WriteFile(t, filepath.Join(dir, "null.png"), "x")

	fake := enginetest.New()
	fake.Results[found] = enginetest.Outcome{Barcodes: []engine.Barcode{enginetest.QR("a"), enginetest.QR("b")}}
	fake.Results[null] = enginetest.Outcome{Null: true}

	rec := NewRecorder()
	r, err := engine.Open(rec.Wrap(fake), "key")
	require.NoError(t, err)
	for _, p := range []string{found, empty, null} {
		_, err := r.Decode(context.Background(), p)
		require.NoError(t, err)
	}
	require.NoError(t, r.Close())

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.calls.WithLabelValues("init_license")))
	assert.Equal(t, 3.0, testutil.ToFloat64(rec.calls.WithLabelValues("decode_file")))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.calls.WithLabelValues("release_result")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.decodes.WithLabelValues(OutcomeNull)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.decodes.WithLabelValues(OutcomeEmpty)))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.decodes.WithLabelValues(OutcomeFound)))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.barcodes.WithLabelValues("QR_CODE")))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.outstanding))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.liveInstances))
	assert.Empty(t, fake.Violations())
}

func TestRecorder_LicenseFailure(t *testing.T) {
	fake := enginetest.New()
	fake.LicenseCode = 3

	rec := NewRecorder()
	_, err := engine.Open(rec.Wrap(fake), "key")
	require.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.licenseErrors))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.calls.WithLabelValues("create_instance")))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	rec := NewRecorder()
	fake := enginetest.New()
	r, err := engine.Open(rec.Wrap(fake), "key")
	require.NoError(t, err)
	require.NoError(t, r.Close())

	path := filepath.Join(t.TempDir(), "pobar.prom")
	require.NoError(t, rec.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `pobar_engine_calls_total{call="create_instance"} 1`)
	assert.Contains(t, string(data), "# TYPE pobar_decode_duration_seconds histogram")
}

func TestRecorder_WriteTextfileBadPath(t *testing.T) {
	rec := NewRecorder()
	err := rec.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	assert.Error(t, err)
}

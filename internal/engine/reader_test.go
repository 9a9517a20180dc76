package engine_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/pobar/internal/engine"
	"github.com/MeKo-Tech/pobar/internal/engine/enginetest"
	"github.com/MeKo-Tech/pobar/internal/testutil"
)

func TestOpen_LicenseRejected(t *testing.T) {
	fake := enginetest.New()
	fake.LicenseCode = -10004

	r, err := engine.Open(fake, "bad-key")
	require.Error(t, err)
	assert.Nil(t, r)

	var lerr *engine.LicenseError
	require.True(t, errors.As(err, &lerr))
	assert.Equal(t, -10004, lerr.Code)
	assert.Contains(t, err.Error(), "-10004")

	assert.Equal(t, []string{enginetest.CallInitLicense}, fake.Calls())
	assert.Equal(t, []string{"bad-key"}, fake.Licenses())
}

func TestOpen_InstanceCreationFails(t *testing.T) {
	fake := enginetest.New()
	fake.FailCreate = true

	r, err := engine.Open(fake, "key")
	assert.Nil(t, r)
	assert.ErrorIs(t, err, engine.ErrInstanceCreation)
	assert.Equal(t, 0, fake.Count(enginetest.CallDecodeFile))
	assert.Equal(t, 0, fake.Count(enginetest.CallDestroyInstance))
}

func TestReader_Decode(t *testing.T) {
	dir := t.TempDir()
	found := testutil.WriteFile(t, filepath.Join(dir, "found.png"), "x")
	empty := testutil.WriteFile(t, filepath.Join(dir, "empty.png"), "x")
	null := testutil.WriteFile(t, filepath.Join(dir, "null.png"), "x")

	fake := enginetest.New()
	fake.Results[found] = enginetest.Outcome{Barcodes: []engine.Barcode{enginetest.QR("hello"), enginetest.QR("world")}}
	fake.Results[empty] = enginetest.Outcome{}
	fake.Results[null] = enginetest.Outcome{Null: true}

	r, err := engine.Open(fake, "key")
	require.NoError(t, err)

	got, err := r.Decode(context.Background(), found)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "hello", got[0].Text)
	assert.Equal(t, engine.Point{X: 110, Y: 110}, got[1].Points[2])

	got, err = r.Decode(context.Background(), empty)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = r.Decode(context.Background(), null)
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, r.Close())

	assert.Equal(t, 2, fake.NonNullResults())
	assert.Equal(t, 2, fake.Released())
	assert.Equal(t, 2, fake.Count(enginetest.CallReleaseResult), "null results are never released")
	assert.Equal(t, 0, fake.LiveInstances())
	assert.Empty(t, fake.Violations())
}

func TestReader_PathNotFound(t *testing.T) {
	fake := enginetest.New()
	r, err := engine.Open(fake, "key")
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	missing := filepath.Join(t.TempDir(), "nonexistent.png")
	_, err = r.Decode(context.Background(), missing)
	require.ErrorIs(t, err, engine.ErrPathNotFound)

	var perr *engine.PathError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, missing, perr.Path)
	assert.Contains(t, err.Error(), missing)

	assert.Equal(t, 0, fake.Count(enginetest.CallDecodeFile))
}

func TestReader_InvalidPath(t *testing.T) {
	fake := enginetest.New()
	r, err := engine.Open(fake, "key")
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	_, err = r.Decode(context.Background(), "bad\x00path.png")
	require.ErrorIs(t, err, engine.ErrInvalidPath)
	assert.Equal(t, 0, fake.Count(enginetest.CallDecodeFile))
}

func TestCheckPath(t *testing.T) {
	img := testutil.WriteFile(t, filepath.Join(t.TempDir(), "ok.png"), "x")
	require.NoError(t, engine.CheckPath(img))
	assert.ErrorIs(t, engine.CheckPath(img+".missing"), engine.ErrPathNotFound)
	assert.ErrorIs(t, engine.CheckPath("a\x00b"), engine.ErrInvalidPath)
}

func TestReader_DecodedTextIsComposed(t *testing.T) {
	img := testutil.WriteFile(t, filepath.Join(t.TempDir(), "text.png"), "x")

	fake := enginetest.New()
	fake.Results[img] = enginetest.Outcome{Barcodes: []engine.Barcode{
		enginetest.QR("cafe\u0301"),
		enginetest.QR("raw\xff\xfebytes"),
	}}

	r, err := engine.Open(fake, "key")
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	got, err := r.Decode(context.Background(), img)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "caf\u00e9", got[0].Text)
	assert.Equal(t, "raw\xff\xfebytes", got[1].Text, "invalid UTF-8 passes through untouched")
}

func TestReader_CloseIsIdempotent(t *testing.T) {
	fake := enginetest.New()
	r, err := engine.Open(fake, "key")
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Equal(t, 1, fake.Count(enginetest.CallDestroyInstance))

	_, err = r.Decode(context.Background(), "whatever.png")
	assert.ErrorIs(t, err, engine.ErrReaderClosed)
	assert.Empty(t, fake.Violations())
}

func TestReader_CanceledContext(t *testing.T) {
	fake := enginetest.New()
	r, err := engine.Open(fake, "key")
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Decode(ctx, testutil.WriteFile(t, filepath.Join(t.TempDir(), "a.png"), "x"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, fake.Count(enginetest.CallDecodeFile))
}

func TestResult_ReleaseObligation(t *testing.T) {
	fake := enginetest.New()
	r, err := engine.Open(fake, "key")
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	fake.Default = enginetest.Outcome{Barcodes: []engine.Barcode{enginetest.QR("x")}}
	res := engine.NewResult(fake, fake.DecodeFile(engine.Handle(nil), "p"))
	assert.False(t, res.Null())
	assert.Equal(t, 1, res.Count())

	res.Release()
	res.Release()
	assert.Equal(t, 1, fake.Released())
	assert.Equal(t, 0, res.Count())

	_, err = res.Barcodes()
	assert.ErrorIs(t, err, engine.ErrResultReleased)

	null := engine.NewResult(fake, nil)
	assert.True(t, null.Null())
	null.Release()
	assert.Equal(t, 1, fake.Count(enginetest.CallReleaseResult))
}

// outcomeKind selects one of the three decode outcomes for the property test.
type outcomeKind int

const (
	kindNull outcomeKind = iota
	kindEmpty
	kindFound
	kindMissing
)

func TestReader_ReleaseCountProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("releases equal non-null decode results and never exceed them", prop.ForAll(
		func(kinds []int) bool {
			dir := t.TempDir()
			fake := enginetest.New()
			r, err := engine.Open(fake, "key")
			if err != nil {
				return false
			}

			for i, k := range kinds {
				path := filepath.Join(dir, fmt.Sprintf("img%d.png", i))
				switch outcomeKind(k) {
				case kindNull:
					fake.Results[path] = enginetest.Outcome{Null: true}
				case kindEmpty:
					fake.Results[path] = enginetest.Outcome{}
				case kindFound:
					fake.Results[path] = enginetest.Outcome{Barcodes: []engine.Barcode{enginetest.QR(path)}}
				}
				if outcomeKind(k) != kindMissing {
					testutil.WriteFile(t, path, "img")
				}
				if _, err := r.Decode(context.Background(), path); err != nil && !errors.Is(err, engine.ErrPathNotFound) {
					return false
				}
			}
			_ = r.Close()

			return fake.Released() == fake.NonNullResults() &&
				fake.Count(enginetest.CallReleaseResult) == fake.NonNullResults() &&
				fake.Count(enginetest.CallDestroyInstance) == 1 &&
				len(fake.Violations()) == 0
		},
		gen.SliceOf(gen.IntRange(int(kindNull), int(kindMissing))),
	))

	properties.TestingRun(t)
}

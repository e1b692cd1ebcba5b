package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-demosync/internal/app"
	"github.com/coreman2200/funtimes-demosync/internal/codec"
	"github.com/coreman2200/funtimes-demosync/internal/config"
)

const project = "../../internal/config/testdata/project.yaml"

func TestDumpRows(t *testing.T) {
	proj, err := config.LoadProject(project)
	require.NoError(t, err)
	core, err := app.FromProject(proj, app.Viewport{})
	require.NoError(t, err)
	core.SetPaused(true)

	var buf bytes.Buffer
	require.NoError(t, dump(&buf, core, proj, 0, 64, 32, false))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "camera_fov=0.8000")
	assert.Contains(t, lines[1], "fx:glow=1.0000")
	assert.Contains(t, lines[2], "camera_fov=1.2000")
	assert.True(t, strings.HasSuffix(lines[2], "target_default clear(0,0,0,1) draw_quad(0)"))
}

func TestDumpSpew(t *testing.T) {
	proj, err := config.LoadProject(project)
	require.NoError(t, err)
	core, err := app.FromProject(proj, app.Viewport{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, dump(&buf, core, proj, 5, 5, 1, true))
	assert.Contains(t, buf.String(), "render.Frame")
	assert.Contains(t, buf.String(), "Row: (uint32) 5")
}

func TestExport(t *testing.T) {
	proj, err := config.LoadProject(project)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "project.bin")
	require.NoError(t, export(path, proj))

	fh, err := os.Open(path)
	require.NoError(t, err)
	defer fh.Close()

	tempo, tracks, rep, err := codec.DecodeProject(fh)
	require.NoError(t, err)
	assert.Equal(t, codec.Tempo{BPM: 125, RPB: 8}, tempo)
	require.Len(t, tracks, 3)
	assert.Equal(t, 5, rep.Keys)
	assert.Zero(t, rep.SkippedKeys)
}

func TestBinaryMatchesYAML(t *testing.T) {
	proj, err := config.LoadProject(project)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "project.bin")
	require.NoError(t, export(path, proj))

	fromYAML, err := app.FromProject(proj, app.Viewport{})
	require.NoError(t, err)
	fromBinary, err := loadBinary(path, proj)
	require.NoError(t, err)

	var want, got bytes.Buffer
	require.NoError(t, dump(&want, fromYAML, proj, 0, 100, 7, false))
	require.NoError(t, dump(&got, fromBinary, proj, 0, 100, 7, false))
	assert.Equal(t, want.String(), got.String())
	assert.NotEmpty(t, got.String())
}

func TestLoadBinaryErrors(t *testing.T) {
	proj, err := config.LoadProject(project)
	require.NoError(t, err)

	_, err = loadBinary(filepath.Join(t.TempDir(), "missing.bin"), proj)
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "short.bin")
	require.NoError(t, os.WriteFile(path, []byte{3, 0, 0}, 0o644))
	_, err = loadBinary(path, proj)
	assert.ErrorIs(t, err, codec.ErrShortData)
}

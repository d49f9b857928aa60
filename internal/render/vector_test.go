package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fingrid/internal/mos"
	"fingrid/pkg/geometry"
)

func TestExtent(t *testing.T) {
	rec := NewRecorder()
	rec.AddRect(testActive, geometry.NewRect(0, 0, 40, 20))
	rec.AddRect(testPoly, geometry.NewRect(-10, -5, 5, 60))

	ext, err := Extent(rec, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, geometry.NewRect(-10, -5, 40, 60), ext)
}

func TestExtentViaArray(t *testing.T) {
	rec := NewRecorder()
	rec.AddVia("M1_LiAct", geometry.NewPoint(0, 100), mos.Enclosure{}, mos.Enclosure{}, mos.ViaArray{
		NumRows: 2, SpRows: 8, NX: 3, SpX: 50, CutHeight: 32,
	})

	ext, err := Extent(rec, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, geometry.NewRect(-16, 64, 116, 136), ext)
}

func TestExtentEmpty(t *testing.T) {
	_, err := Extent(NewRecorder(), nil, 0)
	require.Error(t, err)
}

func TestWriteSVG(t *testing.T) {
	rec := NewRecorder()
	rec.AddRect(testActive, geometry.NewRect(0, 0, 200, 100))
	rec.AddBoundary(geometry.NewRect(0, 0, 200, 100))

	var buf bytes.Buffer
	require.NoError(t, WriteSVG(&buf, rec, VectorOptions{}))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "<"))
	assert.Contains(t, out, "svg")
}

func TestWritePDF(t *testing.T) {
	rec := NewRecorder()
	rec.AddRect(testActive, geometry.NewRect(0, 0, 200, 100))

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, rec, VectorOptions{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

package ply

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(lines ...string) string {
	all := append([]string{"ply", "format binary_little_endian 1.0"}, lines...)
	all = append(all, "end_header")
	return strings.Join(all, "\n") + "\n"
}

func TestDecodeFloatPositionsWithColor(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(header(
		"element vertex 2",
		"property float x",
		"property float y",
		"property float z",
		"property uchar red",
		"property uchar green",
		"property uchar blue",
	))

	for _, v := range []struct {
		x, y, z float32
		r, g, b uint8
	}{
		{1, 2, 3, 255, 0, 0},
		{-1, 0.5, 0, 0, 128, 255},
	} {
		binary.Write(&buf, binary.LittleEndian, v.x)
		binary.Write(&buf, binary.LittleEndian, v.y)
		binary.Write(&buf, binary.LittleEndian, v.z)
		buf.Write([]byte{v.r, v.g, v.b})
	}

	cloud, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, cloud.Count)
	assert.Equal(t, []float32{1, 2, 3, -1, 0.5, 0}, cloud.Positions)
	assert.Equal(t, []uint8{255, 0, 0, 0, 128, 255}, cloud.Colors)
}

func TestDecodeSkipsExtraNumericProperties(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(header(
		"element vertex 1",
		"property float x",
		"property float y",
		"property float z",
		"property float nx",
		"property float ny",
		"property float nz",
		"property uchar red",
		"property uchar green",
		"property uchar blue",
		"property uchar alpha",
	))

	for _, f := range []float32{7, 8, 9, 0.1, 0.2, 0.3} {
		binary.Write(&buf, binary.LittleEndian, f)
	}
	buf.Write([]byte{10, 20, 30, 255})

	cloud, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, []float32{7, 8, 9}, cloud.Positions)
	assert.Equal(t, []uint8{10, 20, 30}, cloud.Colors)
}

func TestDecodeDoublePositions(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(header(
		"element vertex 1",
		"property double x",
		"property double y",
		"property double z",
	))

	for _, f := range []float64{1.5, -2.5, 3.25} {
		binary.Write(&buf, binary.LittleEndian, f)
	}

	cloud, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, -2.5, 3.25}, cloud.Positions)
	// no color properties: mid-gray default
	assert.Equal(t, []uint8{defaultGray, defaultGray, defaultGray}, cloud.Colors)
}

func TestDecodeRejectsASCII(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("ply\nformat ascii 1.0\nelement vertex 0\nend_header\n")

	_, err := Decode(&buf)
	assert.Error(t, err)
}

func TestDecodeTruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(header(
		"element vertex 2",
		"property float x",
		"property float y",
		"property float z",
	))
	binary.Write(&buf, binary.LittleEndian, float32(1))

	_, err := Decode(&buf)
	assert.Error(t, err)
}

func TestDecodeUnsupportedPropertyType(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(header(
		"element vertex 1",
		"property list uchar int vertex_indices",
	))

	_, err := Decode(&buf)
	assert.Error(t, err)
}

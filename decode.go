package splatview

import (
	"encoding/binary"
	"fmt"
)

const (
	headerSize = 4
	recordSize = 10
)

// FormatError reports a splat buffer that cannot be decoded safely.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("splat format error: %s", e.Reason)
}

// Decode parses a complete splat buffer into a Scene.
//
// Wire format (little-endian): uint32 point count, then count 10-byte records
// of x/y/z as half floats followed by r/g/b/a bytes. The alpha byte is read
// and discarded. Y is negated to flip into the renderer's coordinate system.
func Decode(buf []byte) (*Scene, error) {
	if len(buf) < headerSize {
		return nil, &FormatError{Reason: fmt.Sprintf("buffer holds %d bytes, header needs %d", len(buf), headerSize)}
	}

	count := int(binary.LittleEndian.Uint32(buf))
	need := int64(headerSize) + int64(count)*recordSize
	if int64(len(buf)) < need {
		return nil, &FormatError{Reason: fmt.Sprintf("%d points declared but buffer holds %d of %d bytes", count, len(buf), need)}
	}

	positions := make([]float32, 3*count)
	colors := make([]float32, 3*count)

	for i := 0; i < count; i++ {
		rec := buf[headerSize+i*recordSize : headerSize+(i+1)*recordSize]

		positions[i*3] = HalfValue(binary.LittleEndian.Uint16(rec[0:2]))
		positions[i*3+1] = -HalfValue(binary.LittleEndian.Uint16(rec[2:4]))
		positions[i*3+2] = HalfValue(binary.LittleEndian.Uint16(rec[4:6]))

		colors[i*3] = float32(rec[6]) / 255
		colors[i*3+1] = float32(rec[7]) / 255
		colors[i*3+2] = float32(rec[8]) / 255
	}

	return &Scene{
		Positions: positions,
		Colors:    colors,
		Count:     count,
	}, nil
}

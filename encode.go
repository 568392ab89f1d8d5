package splatview

import (
	"encoding/binary"
	"fmt"
)

// Encode serializes point data into the splat wire format. positions holds
// x/y/z triples in the source coordinate system (the Y flip happens at decode
// time, not here), colors holds matching 0-255 r/g/b triples. The alpha byte
// is written as 255.
func Encode(positions []float32, colors []uint8) ([]byte, error) {
	if len(positions)%3 != 0 {
		return nil, fmt.Errorf("positions length %d is not a multiple of 3", len(positions))
	}
	if len(colors) != len(positions) {
		return nil, fmt.Errorf("got %d color components for %d position components", len(colors), len(positions))
	}

	count := len(positions) / 3
	out := make([]byte, headerSize+count*recordSize)
	binary.LittleEndian.PutUint32(out, uint32(count))

	for i := 0; i < count; i++ {
		rec := out[headerSize+i*recordSize:]

		binary.LittleEndian.PutUint16(rec[0:2], HalfBits(positions[i*3]))
		binary.LittleEndian.PutUint16(rec[2:4], HalfBits(positions[i*3+1]))
		binary.LittleEndian.PutUint16(rec[4:6], HalfBits(positions[i*3+2]))

		rec[6] = colors[i*3]
		rec[7] = colors[i*3+1]
		rec[8] = colors[i*3+2]
		rec[9] = 255
	}

	return out, nil
}

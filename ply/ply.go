// Package ply reads binary little-endian PLY point clouds, the source
// format fed to the splat converter.
package ply

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Cloud holds parsed vertex data as parallel flat arrays, matching the
// shape the splat encoder expects.
type Cloud struct {
	Positions []float32 // 3*Count
	Colors    []uint8   // 3*Count
	Count     int
}

type property struct {
	name   string
	size   int
	uchar  bool
	double bool
}

const defaultGray = 128

func parseProperty(fields []string) (property, error) {
	if len(fields) < 3 {
		return property{}, fmt.Errorf("malformed property line %q", strings.Join(fields, " "))
	}

	p := property{name: fields[2]}
	switch fields[1] {
	case "float", "float32":
		p.size = 4
	case "double", "float64":
		p.size = 8
		p.double = true
	case "uchar", "uint8":
		p.size = 1
		p.uchar = true
	default:
		return property{}, fmt.Errorf("unsupported property type %q", fields[1])
	}
	return p, nil
}

// Decode parses a binary_little_endian PLY stream. The first three float or
// double properties are taken as x/y/z and the first three uchar properties
// as r/g/b, defaulting to mid-gray when a file carries no color.
func Decode(r io.Reader) (*Cloud, error) {
	br := bufio.NewReader(r)

	count := -1
	var props []property
	binaryLE := false
	inVertex := false

header:
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("reading ply header: %v", err)
		}

		fields := strings.Fields(strings.TrimSpace(line))
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "format":
			if len(fields) >= 2 && fields[1] == "binary_little_endian" {
				binaryLE = true
			}
		case "element":
			inVertex = len(fields) >= 3 && fields[1] == "vertex"
			if inVertex {
				count, err = strconv.Atoi(fields[2])
				if err != nil {
					return nil, fmt.Errorf("bad vertex count %q", fields[2])
				}
			}
		case "property":
			if !inVertex {
				continue
			}
			p, err := parseProperty(fields)
			if err != nil {
				return nil, err
			}
			props = append(props, p)
		case "end_header":
			break header
		}
	}

	if !binaryLE {
		return nil, fmt.Errorf("only binary_little_endian ply files are supported")
	}
	if count < 0 {
		return nil, fmt.Errorf("ply header declares no vertex element")
	}

	recSize := 0
	numeric := 0
	for _, p := range props {
		recSize += p.size
		if !p.uchar {
			numeric++
		}
	}
	if numeric < 3 {
		return nil, fmt.Errorf("vertex element has %d numeric properties, need at least 3 for x/y/z", numeric)
	}

	cloud := &Cloud{
		Positions: make([]float32, 0, 3*count),
		Colors:    make([]uint8, 0, 3*count),
	}

	rec := make([]byte, recSize)
	for i := 0; i < count; i++ {
		if _, err := io.ReadFull(br, rec); err != nil {
			return nil, fmt.Errorf("vertex %d of %d: %v", i, count, err)
		}

		var pos [3]float32
		var col [3]uint8
		posN, colN := 0, 0

		off := 0
		for _, p := range props {
			switch {
			case p.uchar:
				if colN < 3 {
					col[colN] = rec[off]
					colN++
				}
			case p.double:
				if posN < 3 {
					pos[posN] = float32(math.Float64frombits(binary.LittleEndian.Uint64(rec[off:])))
					posN++
				}
			default:
				if posN < 3 {
					pos[posN] = math.Float32frombits(binary.LittleEndian.Uint32(rec[off:]))
					posN++
				}
			}
			off += p.size
		}

		if colN < 3 {
			col = [3]uint8{defaultGray, defaultGray, defaultGray}
		}

		cloud.Positions = append(cloud.Positions, pos[0], pos[1], pos[2])
		cloud.Colors = append(cloud.Colors, col[0], col[1], col[2])
	}

	cloud.Count = count
	return cloud, nil
}

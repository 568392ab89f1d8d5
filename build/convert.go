package build

import (
	"math/rand"

	"github.com/bronya/splatview/ply"
	"github.com/chewxy/math32"
)

// downsample keeps a random ratio of the cloud's points, without
// replacement. Ratios at or above 1 return the cloud untouched.
func downsample(cloud *ply.Cloud, ratio float64) *ply.Cloud {
	target := int(float64(cloud.Count) * ratio)
	if target >= cloud.Count || target <= 0 {
		return cloud
	}

	picked := rand.Perm(cloud.Count)[:target]
	out := &ply.Cloud{
		Positions: make([]float32, 0, 3*target),
		Colors:    make([]uint8, 0, 3*target),
		Count:     target,
	}

	for _, i := range picked {
		out.Positions = append(out.Positions, cloud.Positions[i*3], cloud.Positions[i*3+1], cloud.Positions[i*3+2])
		out.Colors = append(out.Colors, cloud.Colors[i*3], cloud.Colors[i*3+1], cloud.Colors[i*3+2])
	}
	return out
}

// normalize recenters positions on their centroid and scales the largest
// axis extent to normalizedExtent, keeping every coordinate comfortably
// inside half-float range.
func normalize(positions []float32) {
	count := len(positions) / 3
	if count == 0 {
		return
	}

	var cx, cy, cz float32
	for i := 0; i < count; i++ {
		cx += positions[i*3]
		cy += positions[i*3+1]
		cz += positions[i*3+2]
	}
	cx /= float32(count)
	cy /= float32(count)
	cz /= float32(count)

	var maxExtent float32
	for i := 0; i < count; i++ {
		positions[i*3] -= cx
		positions[i*3+1] -= cy
		positions[i*3+2] -= cz

		for j := 0; j < 3; j++ {
			if e := math32.Abs(positions[i*3+j]); e > maxExtent {
				maxExtent = e
			}
		}
	}

	if maxExtent == 0 {
		return
	}

	scale := normalizedExtent / maxExtent
	for i := range positions {
		positions[i] *= scale
	}
}

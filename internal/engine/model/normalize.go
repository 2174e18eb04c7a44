package model

import "github.com/Faultbox/meshview/pkg/math"

// Normalization records the mapping Normalize applied: p' = (p - Center) * Scale.
type Normalization struct {
	Center math.Vec3
	Scale  float32
}

// Restore maps a normalized point back to source coordinates.
func (n Normalization) Restore(p math.Vec3) math.Vec3 {
	return p.Scale(1 / n.Scale).Add(n.Center)
}

// Normalize centres the pooled positions on the origin and scales them so the
// longest extent is 1. An empty pool is left alone.
func (d *Document) Normalize() Normalization {
	if len(d.Pools.Positions) == 0 {
		return Normalization{Scale: 1}
	}

	var box BoundingBox
	for _, p := range d.Pools.Positions {
		box.Extend(p)
	}

	center := box.Center()
	scale := float32(1)
	if extent := box.Size().MaxComponent(); extent > 0 {
		scale = 1 / extent
	}

	for i, p := range d.Pools.Positions {
		d.Pools.Positions[i] = p.Sub(center).Scale(scale)
	}

	d.recomputeBounds()
	d.stale = true
	return Normalization{Center: center, Scale: scale}
}

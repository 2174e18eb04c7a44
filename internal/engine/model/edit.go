package model

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshview/pkg/math"
)

// ErrSubMeshIndex is returned for an ordinal outside the document.
var ErrSubMeshIndex = errors.New("sub-mesh index out of range")

func (d *Document) checkIndex(i int) error {
	if i < 0 || i >= len(d.subMeshes) {
		return fmt.Errorf("%w: %d (have %d)", ErrSubMeshIndex, i, len(d.subMeshes))
	}
	return nil
}

// DeleteSubMesh removes sub-mesh i. Later ordinals shift down by one, the
// version is bumped and the vertex stream becomes stale.
func (d *Document) DeleteSubMesh(i int) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	// Build a fresh slice so earlier SubMeshes results keep their contents.
	next := make([]SubMesh, 0, len(d.subMeshes)-1)
	next = append(next, d.subMeshes[:i]...)
	d.subMeshes = append(next, d.subMeshes[i+1:]...)
	d.version++
	d.stale = true
	return nil
}

// SetOffset sets the translation of sub-mesh i. The renderer applies it per
// draw, so the stream is not rebuilt.
func (d *Document) SetOffset(i int, offset math.Vec3) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.subMeshes[i].Offset = offset
	return nil
}

// SetDiffuseColor sets the diffuse colour of sub-mesh i's material. The
// colour is baked into the stream, so it goes stale; ordinals and draw
// ranges are unchanged.
func (d *Document) SetDiffuseColor(i int, color [3]float32) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.subMeshes[i].Material.Diffuse = color
	d.stale = true
	return nil
}

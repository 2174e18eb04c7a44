// Package model holds the in-memory OBJ document: pooled geometry, sub-meshes
// with their materials, and the operations that flatten, edit and export them.
package model

import (
	"github.com/Faultbox/meshview/pkg/formats"
	"github.com/Faultbox/meshview/pkg/math"
)

// AbsentIndex marks a corner component that the source did not give.
const AbsentIndex = formats.NoIndex

// GeometryPools holds the shared attribute pools, in declaration order.
type GeometryPools struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	TexCoords []math.Vec3
}

// Corner indexes the pools for one triangle corner.
type Corner struct {
	Position int
	TexCoord int
	Normal   int
}

// Face is one triangle.
type Face struct {
	Corners [3]Corner
	Line    int // Source line, 0 when built in code
}

// Material is the surface description of a sub-mesh.
type Material struct {
	Name           string
	Shininess      float32
	Ambient        [3]float32
	Diffuse        [3]float32
	Specular       [3]float32
	OpticalDensity float32
	Transparency   float32 // Dissolve, 1 = opaque
	Illum          int
	TextureMap     string
}

// DefaultMaterial returns the mid-gray opaque material used when no library
// supplies one.
func DefaultMaterial(name string) Material {
	return Material{
		Name:         name,
		Diffuse:      formats.DefaultDiffuse,
		Transparency: 1,
	}
}

// BoundingBox is an axis-aligned box. Valid is false for a box that encloses nothing.
type BoundingBox struct {
	Min   math.Vec3
	Max   math.Vec3
	Valid bool
}

// Extend grows the box to include p.
func (b *BoundingBox) Extend(p math.Vec3) {
	if !b.Valid {
		b.Min, b.Max, b.Valid = p, p, true
		return
	}
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the extent along each axis.
func (b BoundingBox) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// DrawRange is the span of a sub-mesh in the flattened vertex stream.
type DrawRange struct {
	StartVertex int
	VertexCount int
}

// SubMesh is a run of faces sharing one material.
type SubMesh struct {
	Name     string
	Material Material
	Faces    []Face
	Offset   math.Vec3 // Translation applied at draw and export time
	Bounds   BoundingBox
	Draw     DrawRange
}

// Document owns the pools and sub-meshes of one loaded model.
type Document struct {
	Pools     GeometryPools
	subMeshes []SubMesh
	bounds    BoundingBox
	version   uint64
	stale     bool

	// Source is the path the document was loaded from, empty for Decode.
	Source string
}

// NewDocument builds a document from pools and sub-meshes and computes the boxes.
func NewDocument(pools GeometryPools, subMeshes []SubMesh) *Document {
	doc := &Document{
		Pools:     pools,
		subMeshes: subMeshes,
		version:   1,
		stale:     true,
	}
	doc.recomputeBounds()
	return doc
}

// SubMeshes returns the sub-meshes in ordinal order. The slice is owned by
// the document; callers edit through the editor methods. A structural edit
// replaces the slice, so a result taken earlier is a snapshot of the old order.
func (d *Document) SubMeshes() []SubMesh {
	return d.subMeshes
}

// SubMeshCount returns the number of sub-meshes.
func (d *Document) SubMeshCount() int {
	return len(d.subMeshes)
}

// SubMesh returns the sub-mesh at ordinal i.
func (d *Document) SubMesh(i int) (*SubMesh, error) {
	if err := d.checkIndex(i); err != nil {
		return nil, err
	}
	return &d.subMeshes[i], nil
}

// BoundingBox returns the box over all pooled positions.
func (d *Document) BoundingBox() BoundingBox {
	return d.bounds
}

// Version counts structural edits. It starts at 1.
func (d *Document) Version() uint64 {
	return d.version
}

// Stale reports whether the vertex stream must be rebuilt.
func (d *Document) Stale() bool {
	return d.stale
}

// FaceCount returns the number of faces across all sub-meshes.
func (d *Document) FaceCount() int {
	n := 0
	for i := range d.subMeshes {
		n += len(d.subMeshes[i].Faces)
	}
	return n
}

// position returns the pooled position at i and whether i is in range.
func (d *Document) position(i int) (math.Vec3, bool) {
	if i < 0 || i >= len(d.Pools.Positions) {
		return math.Vec3{}, false
	}
	return d.Pools.Positions[i], true
}

// facePositions returns the three corner positions, or false if any is out of range.
func (d *Document) facePositions(f *Face) ([3]math.Vec3, bool) {
	var ps [3]math.Vec3
	for k, c := range f.Corners {
		p, ok := d.position(c.Position)
		if !ok {
			return ps, false
		}
		ps[k] = p
	}
	return ps, true
}

// recomputeBounds rebuilds the global box from the pool and each sub-mesh box
// from the positions its faces reference.
func (d *Document) recomputeBounds() {
	d.bounds = BoundingBox{}
	for _, p := range d.Pools.Positions {
		d.bounds.Extend(p)
	}
	for i := range d.subMeshes {
		sm := &d.subMeshes[i]
		sm.Bounds = BoundingBox{}
		for fi := range sm.Faces {
			for _, c := range sm.Faces[fi].Corners {
				if p, ok := d.position(c.Position); ok {
					sm.Bounds.Extend(p)
				}
			}
		}
	}
}

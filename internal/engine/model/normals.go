package model

import "github.com/Faultbox/meshview/pkg/math"

// SynthesizeNormals replaces the normal pool with area-weighted vertex normals,
// one per position, and points every corner's normal at its position slot.
// Faces with an out-of-range position are left untouched.
func (d *Document) SynthesizeNormals() {
	normals := make([]math.Vec3, len(d.Pools.Positions))

	for si := range d.subMeshes {
		faces := d.subMeshes[si].Faces
		for fi := range faces {
			ps, ok := d.facePositions(&faces[fi])
			if !ok {
				continue
			}
			// Unnormalized cross product weights by triangle area
			n := ps[1].Sub(ps[0]).Cross(ps[2].Sub(ps[0]))
			for _, c := range faces[fi].Corners {
				normals[c.Position] = normals[c.Position].Add(n)
			}
		}
	}

	for i, n := range normals {
		normals[i] = n.Normalize()
	}

	for si := range d.subMeshes {
		faces := d.subMeshes[si].Faces
		for fi := range faces {
			if _, ok := d.facePositions(&faces[fi]); !ok {
				continue
			}
			for k := range faces[fi].Corners {
				faces[fi].Corners[k].Normal = faces[fi].Corners[k].Position
			}
		}
	}

	d.Pools.Normals = normals
}

package model

// VertexStride is the number of floats per flattened vertex: x, y, z, r, g, b.
const VertexStride = 6

// VertexStream is the renderer-ready interleaved vertex data.
type VertexStream struct {
	Data   []float32
	Ranges []DrawRange // Indexed by sub-mesh ordinal
	// Version is the document version the ordinals belong to.
	Version uint64
}

// VertexCount returns the number of vertices in the stream.
func (vs VertexStream) VertexCount() int {
	return len(vs.Data) / VertexStride
}

// Flatten expands every sub-mesh into per-corner vertices coloured by its
// diffuse. Faces with any out-of-range position are dropped whole. Each
// sub-mesh's Draw range is updated.
func (d *Document) Flatten() VertexStream {
	vs := VertexStream{
		Data:    make([]float32, 0, d.FaceCount()*3*VertexStride),
		Ranges:  make([]DrawRange, len(d.subMeshes)),
		Version: d.version,
	}

	for si := range d.subMeshes {
		sm := &d.subMeshes[si]
		start := len(vs.Data) / VertexStride
		color := sm.Material.Diffuse

		for fi := range sm.Faces {
			ps, ok := d.facePositions(&sm.Faces[fi])
			if !ok {
				continue
			}
			for _, p := range ps {
				vs.Data = append(vs.Data, p.X, p.Y, p.Z, color[0], color[1], color[2])
			}
		}

		sm.Draw = DrawRange{StartVertex: start, VertexCount: len(vs.Data)/VertexStride - start}
		vs.Ranges[si] = sm.Draw
	}

	d.stale = false
	return vs
}

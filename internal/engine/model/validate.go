package model

import "fmt"

// DiagnosticKind classifies a validation finding.
type DiagnosticKind int

const (
	PositionOutOfRange DiagnosticKind = iota
	TexCoordOutOfRange
	NormalOutOfRange
)

func (k DiagnosticKind) String() string {
	switch k {
	case PositionOutOfRange:
		return "position out of range"
	case TexCoordOutOfRange:
		return "texcoord out of range"
	case NormalOutOfRange:
		return "normal out of range"
	default:
		return fmt.Sprintf("DiagnosticKind(%d)", int(k))
	}
}

// Diagnostic points at one bad corner index.
type Diagnostic struct {
	SubMesh int
	Face    int
	Corner  int
	Line    int // Source line, 0 if unknown
	Kind    DiagnosticKind
	Index   int // The offending zero-based index
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: sub-mesh %d face %d corner %d: %s (index %d)",
		d.Line, d.SubMesh, d.Face, d.Corner, d.Kind, d.Index)
}

// Validate reports every corner index that does not resolve against its pool.
// Absent texcoord and normal indices are fine.
func (d *Document) Validate() []Diagnostic {
	var diags []Diagnostic
	for si := range d.subMeshes {
		for fi, f := range d.subMeshes[si].Faces {
			for ci, c := range f.Corners {
				report := func(kind DiagnosticKind, index int) {
					diags = append(diags, Diagnostic{
						SubMesh: si, Face: fi, Corner: ci,
						Line: f.Line, Kind: kind, Index: index,
					})
				}
				if !inPool(c.Position, len(d.Pools.Positions), false) {
					report(PositionOutOfRange, c.Position)
				}
				if !inPool(c.TexCoord, len(d.Pools.TexCoords), true) {
					report(TexCoordOutOfRange, c.TexCoord)
				}
				if !inPool(c.Normal, len(d.Pools.Normals), true) {
					report(NormalOutOfRange, c.Normal)
				}
			}
		}
	}
	return diags
}

func inPool(i, size int, optional bool) bool {
	if i == AbsentIndex && optional {
		return true
	}
	return i >= 0 && i < size
}

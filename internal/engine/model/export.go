package model

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/pkg/formats"
	"github.com/Faultbox/meshview/pkg/math"
)

// DefaultExportHeader is the comment written at the top of exported files.
const DefaultExportHeader = "Generated by meshview"

// Transform is the whole-model transform baked into exported positions.
type Transform struct {
	Offset   math.Vec3
	Rotation math.Quat
	Scale    math.Vec3
}

// IdentityTransform returns a transform that leaves positions unchanged.
func IdentityTransform() Transform {
	return Transform{
		Rotation: math.QuatIdentity(),
		Scale:    math.Splat(1),
	}
}

// Matrix returns Translate(Offset) * Rotation * Scale.
func (t Transform) Matrix() math.Mat4 {
	return math.Translate(t.Offset).Mul(t.Rotation.ToMat4()).Mul(math.Scale(t.Scale))
}

// ExportOptions controls the exported text.
type ExportOptions struct {
	Header string
}

// DefaultExportOptions returns the options Export uses when none are configured.
func DefaultExportOptions() ExportOptions {
	return ExportOptions{Header: DefaultExportHeader}
}

// ExportStats summarizes an export.
type ExportStats struct {
	Vertices     int
	Faces        int
	SkippedFaces int // Faces with an out-of-range position
	SubMeshes    int
}

// Export writes the document as an OBJ plus MTL pair. See ExportWithStats.
func (d *Document) Export(path string, xf Transform, opts ExportOptions) error {
	_, err := d.ExportWithStats(path, xf, opts)
	return err
}

// ExportWithStats writes path (".obj" is appended if missing) and the MTL
// beside it. Each position is baked as xf * (p + subMesh.Offset). Both files
// are staged in the destination directory and renamed into place, so a failed
// export leaves existing files untouched.
func (d *Document) ExportWithStats(path string, xf Transform, opts ExportOptions) (ExportStats, error) {
	if !strings.EqualFold(filepath.Ext(path), ".obj") {
		path += ".obj"
	}
	dir := filepath.Dir(path)
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	mtlName := stem + ".mtl"
	mtlPath := filepath.Join(dir, mtlName)

	var stats ExportStats
	objTmp, err := writeTemp(dir, stem+".obj", func(w io.Writer) error {
		var werr error
		stats, werr = d.writeOBJ(w, mtlName, xf, opts.Header)
		return werr
	})
	if err != nil {
		return stats, err
	}

	mtlTmp, err := writeTemp(dir, mtlName, func(w io.Writer) error {
		return d.writeMTL(w, opts.Header)
	})
	if err != nil {
		return stats, multierr.Append(err, removeTemp(objTmp))
	}

	if err := os.Rename(mtlTmp, mtlPath); err != nil {
		return stats, multierr.Combine(
			fmt.Errorf("installing %s: %w", mtlName, err),
			removeTemp(mtlTmp),
			removeTemp(objTmp),
		)
	}
	if err := os.Rename(objTmp, path); err != nil {
		return stats, multierr.Append(
			fmt.Errorf("installing %s: %w", filepath.Base(path), err),
			removeTemp(objTmp),
		)
	}

	logger.Named("model").Info("model exported",
		zap.String("path", path),
		zap.Int("vertices", stats.Vertices),
		zap.Int("faces", stats.Faces),
		zap.Int("skipped", stats.SkippedFaces))
	return stats, nil
}

func (d *Document) writeOBJ(w io.Writer, mtlName string, xf Transform, header string) (ExportStats, error) {
	stats := ExportStats{SubMeshes: len(d.subMeshes)}
	m := xf.Matrix()

	ow := formats.NewOBJWriter(w)
	if header != "" {
		ow.Comment(header)
	}
	ow.MaterialLib(mtlName)

	next := 1
	for si := range d.subMeshes {
		sm := &d.subMeshes[si]
		ow.UseMaterial(sm.Name)

		// The same pooled position bakes differently under another sub-mesh
		// offset, so the remap is per sub-mesh while the counter is shared.
		remap := make(map[int]int)
		for fi := range sm.Faces {
			f := &sm.Faces[fi]
			ps, ok := d.facePositions(f)
			if !ok {
				stats.SkippedFaces++
				continue
			}
			var idx [3]int
			for k, c := range f.Corners {
				out, seen := remap[c.Position]
				if !seen {
					ow.Vertex(m.TransformVec3(ps[k].Add(sm.Offset)).Array())
					out = next
					next++
					remap[c.Position] = out
					stats.Vertices++
				}
				idx[k] = out
			}
			ow.Triangle(idx[0], idx[1], idx[2])
			stats.Faces++
		}
	}
	return stats, ow.Flush()
}

func (d *Document) writeMTL(w io.Writer, header string) error {
	materials := make([]formats.MTLMaterial, len(d.subMeshes))
	for i := range d.subMeshes {
		m := toMTL(d.subMeshes[i].Material)
		m.Name = d.subMeshes[i].Name
		materials[i] = m
	}
	return formats.WriteMTL(w, header, materials)
}

// writeTemp writes a temporary file in dir through fill, then syncs and closes
// it. On failure the temporary is removed.
func writeTemp(dir, name string, fill func(io.Writer) error) (tmpPath string, err error) {
	f, err := os.CreateTemp(dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("staging %s: %w", name, err)
	}
	tmpPath = f.Name()
	defer func() {
		if err != nil {
			err = multierr.Append(err, removeTemp(tmpPath))
		}
	}()

	if err := fill(f); err != nil {
		f.Close()
		return tmpPath, fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return tmpPath, fmt.Errorf("syncing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return tmpPath, fmt.Errorf("closing %s: %w", name, err)
	}
	return tmpPath, nil
}

func removeTemp(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

package model

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshview/pkg/math"
)

func TestExportRoundTrip(t *testing.T) {
	doc := loadCube(t)
	doc.Normalize()
	want := doc.Flatten()

	out := filepath.Join(t.TempDir(), "cube.obj")
	stats, err := doc.ExportWithStats(out, IdentityTransform(), DefaultExportOptions())
	require.NoError(t, err)
	assert.Equal(t, ExportStats{Vertices: 8, Faces: 12, SubMeshes: 1}, stats)

	back, err := Load(out)
	require.NoError(t, err)
	require.Equal(t, doc.SubMeshCount(), back.SubMeshCount())
	assert.Len(t, back.Pools.Positions, 8)
	for i, sm := range back.SubMeshes() {
		assert.Equal(t, doc.SubMeshes()[i].Name, sm.Name)
		assert.Len(t, sm.Faces, len(doc.SubMeshes()[i].Faces))
		assert.Equal(t, doc.SubMeshes()[i].Material.Diffuse, sm.Material.Diffuse)
	}

	got := back.Flatten()
	require.Len(t, got.Data, len(want.Data))
	assert.InDeltaSlice(t, want.Data, got.Data, delta)
}

func TestExportFileLayout(t *testing.T) {
	doc := decode(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl shiny\nf 1 2 3\n")
	require.NoError(t, doc.SetDiffuseColor(0, [3]float32{0.25, 0.5, 1}))

	dir := t.TempDir()
	require.NoError(t, doc.Export(filepath.Join(dir, "part"), IdentityTransform(), ExportOptions{Header: "test header"}))

	objText, err := os.ReadFile(filepath.Join(dir, "part.obj"))
	require.NoError(t, err)
	assert.Equal(t, `# test header
mtllib part.mtl
usemtl shiny
v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
`, string(objText))

	mtlText, err := os.ReadFile(filepath.Join(dir, "part.mtl"))
	require.NoError(t, err)
	assert.Equal(t, `# test header
newmtl shiny
Ns 0
Ka 0 0 0
Kd 0.25 0.5 1
Ks 0 0 0
Ni 0
d 1
illum 2

`, string(mtlText))

	// Only the two destination files remain
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestExportSharedIndexCounter(t *testing.T) {
	doc := decode(t, twoParts)
	require.NoError(t, doc.SetOffset(1, math.Vec3{Y: 10}))

	dir := t.TempDir()
	stats, err := doc.ExportWithStats(filepath.Join(dir, "parts.obj"), IdentityTransform(), DefaultExportOptions())
	require.NoError(t, err)
	// Positions 1 and 2 are emitted again for the second sub-mesh
	assert.Equal(t, ExportStats{Vertices: 7, Faces: 3, SubMeshes: 2}, stats)

	text, err := os.ReadFile(filepath.Join(dir, "parts.obj"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(text)), "\n")
	assert.Contains(t, lines, "f 1 2 3")
	assert.Contains(t, lines, "f 1 3 4")
	assert.Contains(t, lines, "f 5 6 7")
	assert.Contains(t, lines, "v 0 10 4")

	back, err := Load(filepath.Join(dir, "parts.obj"))
	require.NoError(t, err)
	assert.Empty(t, back.Validate())
	assert.Equal(t, []string{"quad", "tri"}, []string{back.SubMeshes()[0].Name, back.SubMeshes()[1].Name})
}

func TestExportTransform(t *testing.T) {
	doc := decode(t, "v 1 0 0\nv 0 1 0\nv 0 0 1\nf 1 2 3\n")
	require.NoError(t, doc.SetOffset(0, math.Vec3{X: 1}))

	xf := Transform{
		Offset:   math.Vec3{Z: 5},
		Rotation: math.QuatFromAxisAngle(math.Vec3{Z: 1}, float32(3.14159265/2)),
		Scale:    math.Splat(2),
	}

	out := filepath.Join(t.TempDir(), "xf.obj")
	require.NoError(t, doc.Export(out, xf, DefaultExportOptions()))

	back, err := Load(out)
	require.NoError(t, err)
	require.Len(t, back.Pools.Positions, 3)

	// (1,0,0) + offset (1,0,0) = (2,0,0), scaled (4,0,0), rotated 90° about Z (0,4,0), moved (0,4,5)
	assertVec(t, math.Vec3{X: 0, Y: 4, Z: 5}, back.Pools.Positions[0])
	// (0,1,0) -> (1,1,0) -> (2,2,0) -> (-2,2,0) -> (-2,2,5)
	assertVec(t, math.Vec3{X: -2, Y: 2, Z: 5}, back.Pools.Positions[1])
}

func TestExportSkipsOutOfRangeFaces(t *testing.T) {
	doc := decode(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\nf 1 2 7\n")

	stats, err := doc.ExportWithStats(filepath.Join(t.TempDir(), "skip.obj"), IdentityTransform(), DefaultExportOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Faces)
	assert.Equal(t, 1, stats.SkippedFaces)
	assert.Equal(t, 3, stats.Vertices)
}

func TestExportFailureKeepsDestination(t *testing.T) {
	doc := decode(t, twoParts)

	t.Run("missing directory", func(t *testing.T) {
		err := doc.Export(filepath.Join(t.TempDir(), "nope", "out.obj"), IdentityTransform(), DefaultExportOptions())
		assert.Error(t, err)
	})

	t.Run("destination is a directory", func(t *testing.T) {
		dir := t.TempDir()
		// A directory where the OBJ should go makes the final rename fail
		require.NoError(t, os.Mkdir(filepath.Join(dir, "out.obj"), 0755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0644))
		require.NoError(t, os.Mkdir(filepath.Join(dir, "out.obj", "child"), 0755))

		err := doc.Export(filepath.Join(dir, "out.obj"), IdentityTransform(), DefaultExportOptions())
		require.Error(t, err)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temporary %s left behind", e.Name())
		}
		info, err := os.Stat(filepath.Join(dir, "out.obj"))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})
}

func TestIdentityTransformMatrix(t *testing.T) {
	m := IdentityTransform().Matrix()
	assert.Equal(t, math.Identity(), m)
}

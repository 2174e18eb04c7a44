package formats

import (
	"bufio"
	"errors"
	"strings"
	"testing"
)

const cubeOBJ = `# unit cube
mtllib cube.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0 0 1
v 1 0 1
v 1 1 1
v 0 1 1
usemtl red
f 1 2 3 4
f 5 8 7 6
f 1 5 6 2
f 2 6 7 3
f 3 7 8 4
f 5 1 4 8
`

func TestParseOBJ_Cube(t *testing.T) {
	obj, err := ParseOBJ([]byte(cubeOBJ))
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}

	if len(obj.Positions) != 8 {
		t.Errorf("expected 8 positions, got %d", len(obj.Positions))
	}
	if len(obj.Normals) != 0 {
		t.Errorf("expected no normals, got %d", len(obj.Normals))
	}
	if len(obj.MaterialLibs) != 1 || obj.MaterialLibs[0] != "cube.mtl" {
		t.Errorf("expected mtllib cube.mtl, got %v", obj.MaterialLibs)
	}
	if len(obj.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(obj.Groups))
	}
	g := obj.Groups[0]
	if g.Name != "red" || g.Material != "red" {
		t.Errorf("expected group red/red, got %s/%s", g.Name, g.Material)
	}
	if len(g.Triangles) != 12 {
		t.Errorf("expected 12 triangles, got %d", len(g.Triangles))
	}
	if obj.Lines != 17 {
		t.Errorf("expected 17 lines, got %d", obj.Lines)
	}
}

func TestParseOBJ_CornerForms(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
vn 0 0 1
f 1 2 3
f 1/1 2/2 3/3
f 1/1/1 2/2/1 3/3/1
f 1//1 2//1 3//1
f -3 -2 -1
`
	obj, err := ParseOBJ([]byte(src))
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	tris := obj.Groups[0].Triangles
	if len(tris) != 5 {
		t.Fatalf("expected 5 triangles, got %d", len(tris))
	}

	tests := []struct {
		name string
		got  OBJCorner
		want OBJCorner
	}{
		{"p", tris[0].Corners[1], OBJCorner{1, NoIndex, NoIndex}},
		{"p/t", tris[1].Corners[1], OBJCorner{1, 1, NoIndex}},
		{"p/t/n", tris[2].Corners[2], OBJCorner{2, 2, 0}},
		{"p//n", tris[3].Corners[0], OBJCorner{0, NoIndex, 0}},
		{"relative", tris[4].Corners[2], OBJCorner{2, NoIndex, NoIndex}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %+v, want %+v", tt.got, tt.want)
			}
		})
	}

	if tris[4].Line != 12 {
		t.Errorf("expected triangle line 12, got %d", tris[4].Line)
	}
}

func TestTriangulate(t *testing.T) {
	for k := 3; k <= 9; k++ {
		corners := make([]OBJCorner, k)
		for i := range corners {
			corners[i] = OBJCorner{Position: i, TexCoord: NoIndex, Normal: NoIndex}
		}
		tris := Triangulate(corners)
		if len(tris) != k-2 {
			t.Errorf("k=%d: expected %d triangles, got %d", k, k-2, len(tris))
		}
		for i, tri := range tris {
			if tri[0] != corners[0] {
				t.Errorf("k=%d tri %d: first corner %+v, want %+v", k, i, tri[0], corners[0])
			}
			if tri[1].Position != i+1 || tri[2].Position != i+2 {
				t.Errorf("k=%d tri %d: got (%d,%d)", k, i, tri[1].Position, tri[2].Position)
			}
		}
	}

	if tris := Triangulate(make([]OBJCorner, 2)); tris != nil {
		t.Errorf("expected nil for 2 corners, got %v", tris)
	}
}

func TestParseOBJ_Groups(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
f 1 2 3
g body
f 1 2 3
usemtl metal
f 1 2 3
usemtl metal
f 1 2 3
g
`
	obj, err := ParseOBJ([]byte(src))
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}

	want := []struct {
		name, material string
		tris           int
	}{
		{DefaultGroupName, "", 1},
		{"body", "", 1},
		{"metal", "metal", 1},
		{"metal", "metal", 1},
		{"", "", 0},
	}
	if len(obj.Groups) != len(want) {
		t.Fatalf("expected %d groups, got %d", len(want), len(obj.Groups))
	}
	for i, w := range want {
		g := obj.Groups[i]
		if g.Name != w.name || g.Material != w.material || len(g.Triangles) != w.tris {
			t.Errorf("group %d: got (%q, %q, %d), want (%q, %q, %d)",
				i, g.Name, g.Material, len(g.Triangles), w.name, w.material, w.tris)
		}
	}
}

func TestParseOBJ_Ignored(t *testing.T) {
	src := `o thing
s 1
s off
v 0 0 0
l 1 1
`
	obj, err := ParseOBJ([]byte(src))
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	if obj.Ignored["s"] != 2 || obj.Ignored["o"] != 1 || obj.Ignored["l"] != 1 {
		t.Errorf("unexpected ignored counts: %v", obj.Ignored)
	}
}

func TestParseOBJ_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		line    int
		wantErr error
	}{
		{"bad vertex", "v 0 0 0\nv 1 x 0\n", 2, ErrMalformedNumber},
		{"short vertex", "v 1 2\n", 1, ErrTooFewComponents},
		{"short normal", "vn 1\n", 1, ErrTooFewComponents},
		{"bad face index", "v 0 0 0\nf 1 2 a\n", 2, ErrMalformedNumber},
		{"zero index", "f 0 1 2\n", 1, ErrMalformedCorner},
		{"too many slashes", "f 1/1/1/1 2 3\n", 1, ErrMalformedCorner},
		{"empty position", "f /1 2 3\n", 1, ErrMalformedCorner},
		{"relative before declared", "f -1 -2 -3\n", 1, ErrMalformedCorner},
		{"two corners", "f 1 2\n", 1, ErrTooFewFaceCorners},
		{"nan vertex", "v nan 0 0\n", 1, ErrMalformedNumber},
		{"inf vertex", "v 0 inf 0\n", 1, ErrMalformedNumber},
		{"negative inf normal", "vn 0 0 -Inf\n", 1, ErrMalformedNumber},
		{"nan texcoord", "v 0 0 0\nvt NaN\n", 2, ErrMalformedNumber},
		{"float32 overflow", "v 1e39 0 0\n", 1, ErrMalformedNumber},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOBJ([]byte(tt.src))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if perr.Line != tt.line {
				t.Errorf("expected line %d, got %d", tt.line, perr.Line)
			}
		})
	}
}

func TestParseOBJ_OutOfRangeIsNotAnError(t *testing.T) {
	obj, err := ParseOBJ([]byte("v 0 0 0\nv 1 0 0\nf 1 2 9\n"))
	if err != nil {
		t.Fatalf("out-of-range index should load, got %v", err)
	}
	if got := obj.Groups[0].Triangles[0].Corners[2].Position; got != 8 {
		t.Errorf("expected raw index 8, got %d", got)
	}
}

func TestParseOBJ_FourComponentVertex(t *testing.T) {
	obj, err := ParseOBJ([]byte("v 1 2 3 0.5\nvt 0.25\n"))
	if err != nil {
		t.Fatalf("ParseOBJ: %v", err)
	}
	if obj.Positions[0] != [3]float32{1, 2, 3} {
		t.Errorf("unexpected position %v", obj.Positions[0])
	}
	if obj.TexCoords[0] != [3]float32{0.25, 0, 0} {
		t.Errorf("unexpected texcoord %v", obj.TexCoords[0])
	}
}

func TestParseOBJ_LineTooLong(t *testing.T) {
	src := "v 0 0 0\nv " + strings.Repeat("1", MaxLineLength+1) + " 0 0\n"

	_, err := ParseOBJ([]byte(src))
	if !errors.Is(err, bufio.ErrTooLong) {
		t.Fatalf("expected bufio.ErrTooLong, got %v", err)
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if perr.Line != 2 {
		t.Errorf("expected line 2, got %d", perr.Line)
	}
}

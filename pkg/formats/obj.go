// Package formats provides parsers and writers for Wavefront mesh file formats.
// OBJ (geometry) format parser.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/chewxy/math32"
)

// OBJ format errors.
var (
	ErrMalformedNumber   = errors.New("malformed number")
	ErrMalformedCorner   = errors.New("malformed face corner")
	ErrTooFewComponents  = errors.New("too few components")
	ErrTooFewFaceCorners = errors.New("face needs at least 3 corners")
)

// NoIndex marks a face corner component that was not given in the file.
const NoIndex = -1

// DefaultGroupName names the group that faces fall into when no g/usemtl precedes them.
const DefaultGroupName = "default"

// ParseError reports a malformed line. It wraps one of the format errors.
type ParseError struct {
	Line      int    // 1-based line number
	Directive string // Leading token of the line
	Err       error
}

func (e *ParseError) Error() string {
	if e.Directive == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.Directive, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// OBJCorner references pool entries with zero-based indices, NoIndex if absent.
type OBJCorner struct {
	Position int
	TexCoord int
	Normal   int
}

// OBJTriangle is one triangle of a fan-triangulated face.
type OBJTriangle struct {
	Corners [3]OBJCorner
	Line    int // Source line of the face
}

// OBJGroup is a run of faces opened by g, usemtl, or an implicit default.
type OBJGroup struct {
	Name string
	// Material is the usemtl name; empty for groups opened by g.
	Material  string
	Triangles []OBJTriangle
	Line      int
}

// OBJ represents a parsed OBJ file.
type OBJ struct {
	Positions    [][3]float32
	Normals      [][3]float32
	TexCoords    [][3]float32
	MaterialLibs []string
	Groups       []OBJGroup
	// Ignored counts skipped directives by token (comments excluded).
	Ignored map[string]int
	Lines   int
}

// ParseOBJ parses OBJ text.
func ParseOBJ(data []byte) (*OBJ, error) {
	obj := &OBJ{Ignored: make(map[string]int)}

	scanner := newScanner(data)

	// Index of the group faces go into, -1 until one is opened.
	current := -1
	openGroup := func(name, material string, line int) {
		obj.Groups = append(obj.Groups, OBJGroup{Name: name, Material: material, Line: line})
		current = len(obj.Groups) - 1
	}

	linenum := 0
	for scanner.Scan() {
		linenum++

		directive, args := splitDirective(scanner.Text())
		if directive == "" || strings.HasPrefix(directive, "#") {
			continue
		}
		fail := func(err error) error {
			return &ParseError{Line: linenum, Directive: directive, Err: err}
		}

		switch directive {
		case "v":
			v, err := parseVector(args, 3, 3)
			if err != nil {
				return nil, fail(err)
			}
			obj.Positions = append(obj.Positions, v)

		case "vn":
			v, err := parseVector(args, 3, 3)
			if err != nil {
				return nil, fail(err)
			}
			obj.Normals = append(obj.Normals, v)

		case "vt":
			v, err := parseVector(args, 1, 3)
			if err != nil {
				return nil, fail(err)
			}
			obj.TexCoords = append(obj.TexCoords, v)

		case "mtllib":
			obj.MaterialLibs = append(obj.MaterialLibs, args...)

		case "g":
			openGroup(firstOr(args, ""), "", linenum)

		case "usemtl":
			// Every usemtl opens a new group, even when the material repeats.
			name := firstOr(args, "")
			openGroup(name, name, linenum)

		case "f":
			if len(args) < 3 {
				return nil, fail(fmt.Errorf("%w: got %d", ErrTooFewFaceCorners, len(args)))
			}
			corners := make([]OBJCorner, len(args))
			for i, arg := range args {
				c, err := parseCorner(arg, obj)
				if err != nil {
					return nil, fail(err)
				}
				corners[i] = c
			}
			if current < 0 {
				openGroup(DefaultGroupName, "", linenum)
			}
			group := &obj.Groups[current]
			for _, tri := range Triangulate(corners) {
				group.Triangles = append(group.Triangles, OBJTriangle{Corners: tri, Line: linenum})
			}

		default:
			obj.Ignored[directive]++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Line: linenum + 1, Err: err}
	}
	obj.Lines = linenum
	return obj, nil
}

// Triangulate fans a polygon from its first corner: (0, i, i+1) for i in 1..k-2.
// Returns nil for fewer than 3 corners.
func Triangulate(corners []OBJCorner) [][3]OBJCorner {
	if len(corners) < 3 {
		return nil
	}
	tris := make([][3]OBJCorner, 0, len(corners)-2)
	for i := 1; i < len(corners)-1; i++ {
		tris = append(tris, [3]OBJCorner{corners[0], corners[i], corners[i+1]})
	}
	return tris
}

// MaxLineLength is the longest line the OBJ and MTL parsers accept.
const MaxLineLength = 1024 * 1024

func newScanner(data []byte) *bufio.Scanner {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineLength)
	return scanner
}

// splitDirective returns the leading token and the remaining fields of a line.
func splitDirective(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

func firstOr(args []string, fallback string) string {
	if len(args) == 0 {
		return fallback
	}
	return args[0]
}

// parseVector reads between min and max floats; extra fields (e.g. the w of v) are ignored.
func parseVector(args []string, min, max int) ([3]float32, error) {
	var v [3]float32
	if len(args) < min {
		return v, fmt.Errorf("%w: want %d, got %d", ErrTooFewComponents, min, len(args))
	}
	for i := 0; i < max && i < len(args); i++ {
		f, err := parseFloat(args[i])
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

// parseFloat rejects nan and inf along with out-of-range values.
func parseFloat(s string) (float32, error) {
	f, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedNumber, s)
	}
	v := float32(f)
	if math32.IsNaN(v) || math32.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", ErrMalformedNumber, s)
	}
	return v, nil
}

// parseCorner parses p, p/t, p/t/n or p//n against the pools declared so far.
func parseCorner(s string, obj *OBJ) (OBJCorner, error) {
	c := OBJCorner{Position: NoIndex, TexCoord: NoIndex, Normal: NoIndex}

	parts := strings.Split(s, "/")
	if len(parts) > 3 || parts[0] == "" {
		return c, fmt.Errorf("%w: %q", ErrMalformedCorner, s)
	}

	var err error
	if c.Position, err = resolveIndex(parts[0], len(obj.Positions)); err != nil {
		return c, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.TexCoord, err = resolveIndex(parts[1], len(obj.TexCoords)); err != nil {
			return c, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.Normal, err = resolveIndex(parts[2], len(obj.Normals)); err != nil {
			return c, err
		}
	}
	return c, nil
}

// resolveIndex converts a 1-based (or negative, relative) index to zero-based.
// Range is not checked here; flatten and export skip what they cannot resolve.
func resolveIndex(s string, declared int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return NoIndex, fmt.Errorf("%w: %q", ErrMalformedNumber, s)
	}
	switch {
	case n > 0:
		return n - 1, nil
	case n < 0:
		if declared+n < 0 {
			return NoIndex, fmt.Errorf("%w: relative index %d with %d declared", ErrMalformedCorner, n, declared)
		}
		return declared + n, nil
	default:
		return NoIndex, fmt.Errorf("%w: index 0 in %q", ErrMalformedCorner, s)
	}
}

package formats

import (
	"strconv"
	"strings"
)

// DefaultDiffuse is the mid-gray assigned when no material supplies a Kd.
var DefaultDiffuse = [3]float32{0.7, 0.7, 0.7}

// MTLMaterial is one newmtl block.
type MTLMaterial struct {
	Name           string
	Shininess      float32    // Ns
	Ambient        [3]float32 // Ka
	Diffuse        [3]float32 // Kd
	Specular       [3]float32 // Ks
	OpticalDensity float32    // Ni
	Dissolve       float32    // d (1 = opaque)
	Illum          int        // illum
	DiffuseMap     string     // map_Kd
}

// NewMTLMaterial returns a material with the format defaults.
func NewMTLMaterial(name string) MTLMaterial {
	return MTLMaterial{
		Name:     name,
		Diffuse:  DefaultDiffuse,
		Dissolve: 1,
	}
}

// MTL represents a parsed material library.
type MTL struct {
	Materials map[string]*MTLMaterial
	Order     []string // First-declaration order of material names
}

// Lookup returns the named material.
func (m *MTL) Lookup(name string) (*MTLMaterial, bool) {
	if m == nil {
		return nil, false
	}
	mat, ok := m.Materials[name]
	return mat, ok
}

// ParseMTL parses material library text. Directives before the first newmtl
// and unknown directives are ignored.
func ParseMTL(data []byte) (*MTL, error) {
	mtl := &MTL{Materials: make(map[string]*MTLMaterial)}

	scanner := newScanner(data)
	var current *MTLMaterial

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

		if directive == "newmtl" {
			name := firstOr(args, "")
			if _, exists := mtl.Materials[name]; !exists {
				mtl.Order = append(mtl.Order, name)
			}
			mat := NewMTLMaterial(name)
			mtl.Materials[name] = &mat
			current = &mat
			continue
		}
		if current == nil {
			continue
		}

		var err error
		switch directive {
		case "Ns":
			current.Shininess, err = parseScalar(args)
		case "Ni":
			current.OpticalDensity, err = parseScalar(args)
		case "d":
			current.Dissolve, err = parseScalar(args)
		case "Tr":
			var tr float32
			if tr, err = parseScalar(args); err == nil {
				current.Dissolve = 1 - tr
			}
		case "Ka":
			current.Ambient, err = parseVector(args, 3, 3)
		case "Kd":
			current.Diffuse, err = parseVector(args, 3, 3)
		case "Ks":
			current.Specular, err = parseVector(args, 3, 3)
		case "illum":
			current.Illum, err = parseInt(args)
		case "map_Kd":
			// Options such as -s/-o precede the file name, which is always last.
			if len(args) > 0 {
				current.DiffuseMap = args[len(args)-1]
			}
		}
		if err != nil {
			return nil, fail(err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Line: linenum + 1, Err: err}
	}
	return mtl, nil
}

func parseScalar(args []string) (float32, error) {
	v, err := parseVector(args, 1, 1)
	return v[0], err
}

func parseInt(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrTooFewComponents
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		// Some exporters write illum as a float.
		f, ferr := parseFloat(args[0])
		if ferr != nil {
			return 0, ferr
		}
		return int(f), nil
	}
	return n, nil
}

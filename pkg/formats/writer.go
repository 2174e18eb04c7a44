package formats

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// OBJWriter emits OBJ directives line by line. The first write error sticks;
// later calls are no-ops and Flush returns it.
type OBJWriter struct {
	w     *bufio.Writer
	err   error
	lines int
}

// NewOBJWriter wraps w in a buffered OBJ writer.
func NewOBJWriter(w io.Writer) *OBJWriter {
	return &OBJWriter{w: bufio.NewWriter(w)}
}

func (ow *OBJWriter) line(format string, args ...any) {
	if ow.err != nil {
		return
	}
	if _, err := fmt.Fprintf(ow.w, format+"\n", args...); err != nil {
		ow.err = err
		return
	}
	ow.lines++
}

// Comment writes "# text".
func (ow *OBJWriter) Comment(text string) {
	ow.line("# %s", text)
}

// MaterialLib writes "mtllib name".
func (ow *OBJWriter) MaterialLib(name string) {
	ow.line("mtllib %s", name)
}

// UseMaterial writes "usemtl name".
func (ow *OBJWriter) UseMaterial(name string) {
	ow.line("usemtl %s", name)
}

// Vertex writes "v x y z".
func (ow *OBJWriter) Vertex(p [3]float32) {
	ow.line("v %s %s %s", FormatFloat(p[0]), FormatFloat(p[1]), FormatFloat(p[2]))
}

// Triangle writes "f a b c" with 1-based position indices.
func (ow *OBJWriter) Triangle(a, b, c int) {
	ow.line("f %d %d %d", a, b, c)
}

// Lines returns the number of lines written so far.
func (ow *OBJWriter) Lines() int {
	return ow.lines
}

// Flush flushes buffered output and returns the first error seen.
func (ow *OBJWriter) Flush() error {
	if ow.err != nil {
		return ow.err
	}
	return ow.w.Flush()
}

// WriteMTL writes one newmtl block per material. illum is always written as 2.
func WriteMTL(w io.Writer, header string, materials []MTLMaterial) error {
	bw := bufio.NewWriter(w)
	if header != "" {
		fmt.Fprintf(bw, "# %s\n", header)
	}
	for _, m := range materials {
		fmt.Fprintf(bw, "newmtl %s\n", m.Name)
		fmt.Fprintf(bw, "Ns %s\n", FormatFloat(m.Shininess))
		fmt.Fprintf(bw, "Ka %s\n", formatTriple(m.Ambient))
		fmt.Fprintf(bw, "Kd %s\n", formatTriple(m.Diffuse))
		fmt.Fprintf(bw, "Ks %s\n", formatTriple(m.Specular))
		fmt.Fprintf(bw, "Ni %s\n", FormatFloat(m.OpticalDensity))
		fmt.Fprintf(bw, "d %s\n", FormatFloat(m.Dissolve))
		fmt.Fprintf(bw, "illum 2\n")
		if m.DiffuseMap != "" {
			fmt.Fprintf(bw, "map_Kd %s\n", m.DiffuseMap)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// FormatFloat formats f with the shortest representation that parses back exactly.
func FormatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

func formatTriple(v [3]float32) string {
	return FormatFloat(v[0]) + " " + FormatFloat(v[1]) + " " + FormatFloat(v[2])
}

// meshtool is a CLI utility for inspecting, editing and re-exporting OBJ models.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/config"
	"github.com/Faultbox/meshview/internal/engine/camera"
	"github.com/Faultbox/meshview/internal/engine/debug"
	"github.com/Faultbox/meshview/internal/engine/model"
	"github.com/Faultbox/meshview/internal/engine/picking"
	"github.com/Faultbox/meshview/internal/engine/scene"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/pkg/math"
)

var cfg *config.Config

func main() {
	flag.Usage = printUsage
	config.ParseFlags()

	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger.Sugar.Debugf("Config: %+v", cfg)

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "info":
		err = cmdInfo(args)
	case "flatten":
		err = cmdFlatten(args)
	case "validate":
		err = cmdValidate(args)
	case "export", "x":
		err = cmdExport(args)
	case "pick":
		err = cmdPick(args)
	case "raypick":
		err = cmdRayPick(args)
	case "legend":
		err = cmdLegend(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		var usage usageError
		if errors.As(err, &usage) {
			fmt.Fprintf(os.Stderr, "Usage: meshtool %s\n", string(usage))
		} else {
			logger.Error("command failed", zap.String("command", command), zap.Error(err))
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		logger.Sync()
		os.Exit(1)
	}
}

// usageError carries the usage line of a command invoked with bad arguments.
type usageError string

func (u usageError) Error() string { return "usage: " + string(u) }

func printUsage() {
	fmt.Println(`meshtool - OBJ model inspection and export utility

Usage:
  meshtool [global options] <command> [options]

Global options:
  -config <file>     Config file (default: ./meshview.yaml or the user config dir)
  -debug             Debug logging
  -no-normalize      Keep source coordinates
  -out <path>        Default export path
  -log-file <file>   Also log to a rotating file

Commands:
  info <file.obj>                 Show pools, sub-meshes, materials and bounds
  flatten <file.obj>              Show the vertex stream layout
  validate <file.obj>             List unresolved face indices (exit 1 if any)
  export [options] <in.obj> [out] Load, edit and write an OBJ/MTL pair
  pick <r> <g> <b>                Decode a pick-pass pixel
  raypick <file.obj> <x> <y> <w> <h>
                                  Ray-pick a pixel of the default framed view
  legend <count> <out.png>        Write the pick colours of count sub-meshes

Export options:
  -offset x,y,z        Whole-model translation
  -scale x,y,z         Whole-model scale (a single value scales uniformly)
  -rotate ax,ay,az,deg Whole-model rotation
  -delete i,j,...      Delete sub-meshes by ordinal
  -color i=r,g,b       Set a sub-mesh diffuse colour (repeatable)

Examples:
  meshtool info chair.obj
  meshtool export -rotate 0,1,0,90 -delete 2 chair.obj chair_fixed
  meshtool pick 3 0 0`)
}

func sceneConfig() scene.Config {
	bg := cfg.Picking.Background
	return scene.Config{
		NormalizeOnLoad:   cfg.Model.NormalizeOnLoad,
		SynthesizeNormals: cfg.Model.SynthesizeNormals,
		Background:        [3]uint8{uint8(bg[0]), uint8(bg[1]), uint8(bg[2])},
		ExportHeader:      cfg.Export.Header,
	}
}

func loadScene(path string) (*scene.Scene, error) {
	s := scene.New(sceneConfig())
	if err := s.Load(path); err != nil {
		return nil, err
	}
	return s, nil
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return usageError("info <file.obj>")
	}
	s, err := loadScene(args[0])
	if err != nil {
		return err
	}
	doc := s.Document()

	fmt.Printf("Model:      %s\n", args[0])
	fmt.Printf("Positions:  %d\n", len(doc.Pools.Positions))
	fmt.Printf("Normals:    %d\n", len(doc.Pools.Normals))
	fmt.Printf("TexCoords:  %d\n", len(doc.Pools.TexCoords))
	fmt.Printf("Faces:      %d\n", doc.FaceCount())
	fmt.Printf("Bounds:     %s\n", formatBox(doc.BoundingBox()))
	if n := s.Normalization(); cfg.Model.NormalizeOnLoad {
		fmt.Printf("Normalized: center %s, scale %g\n", formatVec(n.Center), n.Scale)
		fmt.Printf("Source:     %s\n", formatBox(sourceBounds(n, doc.BoundingBox())))
	}
	fmt.Println()
	fmt.Printf("Sub-meshes: %d\n", doc.SubMeshCount())
	for i, sm := range doc.SubMeshes() {
		m := sm.Material
		fmt.Printf("  [%3d] %-20s faces %-6d material %-16q Kd %g %g %g  %s\n",
			i, sm.Name, len(sm.Faces), m.Name, m.Diffuse[0], m.Diffuse[1], m.Diffuse[2], formatBox(sm.Bounds))
	}
	return nil
}

func cmdFlatten(args []string) error {
	if len(args) < 1 {
		return usageError("flatten <file.obj>")
	}
	s, err := loadScene(args[0])
	if err != nil {
		return err
	}
	vs, err := s.VertexStream()
	if err != nil {
		return err
	}

	fmt.Printf("Vertices: %d (%d floats, stride %d)\n", vs.VertexCount(), len(vs.Data), model.VertexStride)
	fmt.Printf("Version:  %d\n", vs.Version)
	for i, r := range vs.Ranges {
		pick := "ray"
		if c, err := s.PickColor(i); err == nil {
			pick = fmt.Sprintf("%.4f", c.R)
		}
		fmt.Printf("  [%3d] %-20s start %-8d count %-8d pick %s\n",
			i, s.Document().SubMeshes()[i].Name, r.StartVertex, r.VertexCount, pick)
	}
	return nil
}

func cmdValidate(args []string) error {
	if len(args) < 1 {
		return usageError("validate <file.obj>")
	}
	doc, err := model.Load(args[0])
	if err != nil {
		return err
	}

	diags := doc.Validate()
	for _, d := range diags {
		fmt.Println(d)
	}
	if len(diags) > 0 {
		return fmt.Errorf("%d unresolved index(es)", len(diags))
	}
	fmt.Println("OK")
	return nil
}

func cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	offsetStr := fs.String("offset", "0,0,0", "Whole-model translation x,y,z")
	scaleStr := fs.String("scale", "1", "Whole-model scale x,y,z or a single value")
	rotateStr := fs.String("rotate", "", "Rotation ax,ay,az,degrees")
	deleteStr := fs.String("delete", "", "Comma-separated sub-mesh ordinals to delete")
	var colors colorFlags
	fs.Var(&colors, "color", "Diffuse colour i=r,g,b (repeatable)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return usageError("export [options] <in.obj> [out]")
	}
	out := cfg.OutputPath()
	if fs.NArg() > 1 {
		out = fs.Arg(1)
	}

	offset, err := parseVec3(*offsetStr)
	if err != nil {
		return fmt.Errorf("-offset: %w", err)
	}
	scale, err := parseScale(*scaleStr)
	if err != nil {
		return fmt.Errorf("-scale: %w", err)
	}
	deletes, err := parseOrdinals(*deleteStr)
	if err != nil {
		return fmt.Errorf("-delete: %w", err)
	}

	s, err := loadScene(fs.Arg(0))
	if err != nil {
		return err
	}

	if *rotateStr != "" {
		axis, deg, err := parseRotation(*rotateStr)
		if err != nil {
			return fmt.Errorf("-rotate: %w", err)
		}
		s.RotateBy(axis, math.DegToRad(deg))
	}

	// Ordinals refer to the file as loaded: recolour first, then delete from the back.
	for _, c := range colors {
		if err := s.SetDiffuseColor(c.ordinal, c.rgb); err != nil {
			return err
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(deletes)))
	for i, ord := range deletes {
		if i > 0 && ord == deletes[i-1] {
			continue
		}
		if err := s.DeleteSubMesh(ord); err != nil {
			return err
		}
	}

	stats, err := s.Export(out, offset, scale)
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d sub-meshes, %d vertices, %d faces", stats.SubMeshes, stats.Vertices, stats.Faces)
	if stats.SkippedFaces > 0 {
		fmt.Printf(" (%d skipped)", stats.SkippedFaces)
	}
	fmt.Println()
	return nil
}

func cmdPick(args []string) error {
	if len(args) < 3 {
		return usageError("pick <r> <g> <b>")
	}
	var rgb [3]uint8
	for i := range rgb {
		v, err := strconv.ParseUint(args[i], 10, 8)
		if err != nil {
			return fmt.Errorf("channel %q: %w", args[i], err)
		}
		rgb[i] = uint8(v)
	}

	ord := picking.Decode(rgb[0], rgb[1], rgb[2])
	if ord == picking.NoSelection {
		fmt.Println("background")
		return nil
	}
	fmt.Printf("sub-mesh %d\n", ord)
	return nil
}

func cmdRayPick(args []string) error {
	if len(args) < 5 {
		return usageError("raypick <file.obj> <x> <y> <width> <height>")
	}
	px, err := parseFloats(strings.Join(args[1:5], ","))
	if err != nil {
		return err
	}
	if px[2] <= 0 || px[3] <= 0 {
		return fmt.Errorf("viewport must be positive, got %gx%g", px[2], px[3])
	}

	s, err := loadScene(args[0])
	if err != nil {
		return err
	}
	cam := camera.NewOrbitCamera()
	cam.FitToBounds(s.Document().BoundingBox())

	ord, err := s.PickRay(cam.ScreenRay(px[0], px[1], px[2], px[3]))
	if err != nil {
		return err
	}
	if ord == picking.NoSelection {
		fmt.Println("background")
		return nil
	}
	fmt.Printf("sub-mesh %d (%s)\n", ord, s.Document().SubMeshes()[ord].Name)
	return nil
}

func cmdLegend(args []string) error {
	if len(args) < 2 {
		return usageError("legend <count> <out.png>")
	}
	count, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("count %q: %w", args[0], err)
	}
	img, err := debug.PickLegend(count)
	if err != nil {
		return err
	}
	if err := debug.WritePNG(args[1], img); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", args[1])
	return nil
}

// sourceBounds maps a normalized box back to file coordinates.
func sourceBounds(n model.Normalization, b model.BoundingBox) model.BoundingBox {
	if !b.Valid {
		return b
	}
	return model.BoundingBox{Min: n.Restore(b.Min), Max: n.Restore(b.Max), Valid: true}
}

func formatVec(v math.Vec3) string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

func formatBox(b model.BoundingBox) string {
	if !b.Valid {
		return "(empty)"
	}
	return formatVec(b.Min) + " - " + formatVec(b.Max)
}

// colorFlags collects repeated -color i=r,g,b values.
type colorFlags []colorEdit

type colorEdit struct {
	ordinal int
	rgb     [3]float32
}

func (c *colorFlags) String() string {
	parts := make([]string, len(*c))
	for i, e := range *c {
		parts[i] = fmt.Sprintf("%d=%g,%g,%g", e.ordinal, e.rgb[0], e.rgb[1], e.rgb[2])
	}
	return strings.Join(parts, " ")
}

func (c *colorFlags) Set(s string) error {
	idx, rgb, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("want i=r,g,b, got %q", s)
	}
	ord, err := strconv.Atoi(idx)
	if err != nil {
		return fmt.Errorf("ordinal %q: %w", idx, err)
	}
	v, err := parseVec3(rgb)
	if err != nil {
		return err
	}
	*c = append(*c, colorEdit{ordinal: ord, rgb: v.Array()})
	return nil
}

func parseFloats(s string) ([]float32, error) {
	fields := strings.Split(s, ",")
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}

func parseVec3(s string) (math.Vec3, error) {
	f, err := parseFloats(s)
	if err != nil {
		return math.Vec3{}, err
	}
	if len(f) != 3 {
		return math.Vec3{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	return math.Vec3{X: f[0], Y: f[1], Z: f[2]}, nil
}

func parseScale(s string) (math.Vec3, error) {
	f, err := parseFloats(s)
	if err != nil {
		return math.Vec3{}, err
	}
	switch len(f) {
	case 1:
		return math.Splat(f[0]), nil
	case 3:
		return math.Vec3{X: f[0], Y: f[1], Z: f[2]}, nil
	}
	return math.Vec3{}, fmt.Errorf("want s or x,y,z, got %q", s)
}

func parseRotation(s string) (math.Vec3, float32, error) {
	f, err := parseFloats(s)
	if err != nil {
		return math.Vec3{}, 0, err
	}
	if len(f) != 4 {
		return math.Vec3{}, 0, fmt.Errorf("want ax,ay,az,deg, got %q", s)
	}
	axis := math.Vec3{X: f[0], Y: f[1], Z: f[2]}
	if axis.Length() == 0 {
		return math.Vec3{}, 0, fmt.Errorf("zero rotation axis")
	}
	return axis, f[3], nil
}

func parseOrdinals(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

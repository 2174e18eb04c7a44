// Package scene owns the loaded document on behalf of a viewer host.
// It keeps the vertex stream current, tracks the selection across edits, and
// resolves picks. A Scene is not safe for concurrent use.
package scene

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/engine/model"
	"github.com/Faultbox/meshview/internal/engine/picking"
	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/pkg/math"
)

var (
	// ErrNoDocument is returned by operations that need a loaded document.
	ErrNoDocument = errors.New("scene: no document loaded")
	// ErrStalePick is returned when a pick pixel belongs to an older stream.
	ErrStalePick = errors.New("scene: pick result from an outdated stream")
)

// Config contains scene configuration options.
type Config struct {
	NormalizeOnLoad   bool
	SynthesizeNormals bool
	// Background is the clear colour of the pick pass.
	Background   [3]uint8
	ExportHeader string
}

// DefaultConfig returns a default scene configuration.
func DefaultConfig() Config {
	return Config{
		NormalizeOnLoad:   true,
		SynthesizeNormals: true,
		Background:        [3]uint8{255, 255, 255},
		ExportHeader:      model.DefaultExportHeader,
	}
}

// Selection names a sub-mesh by ordinal within one document version.
type Selection struct {
	Version uint64
	Ordinal int
}

// Scene manages one document, its stream and the current selection.
type Scene struct {
	config Config
	log    *zap.Logger

	doc           *model.Document
	normalization model.Normalization
	rotation      math.Quat

	stream    model.VertexStream
	hasStream bool

	selection Selection
}

// New creates an empty scene.
func New(cfg Config) *Scene {
	return &Scene{
		config:    cfg,
		log:       logger.Named("scene"),
		rotation:  math.QuatIdentity(),
		selection: Selection{Ordinal: picking.NoSelection},
	}
}

// Load builds a document from path and installs it. On failure the current
// document stays in place.
func (s *Scene) Load(path string) error {
	doc, err := model.LoadWithOptions(path, model.LoadOptions{SynthesizeNormals: s.config.SynthesizeNormals})
	if err != nil {
		s.log.Error("load failed", zap.String("path", path), zap.Error(err))
		return err
	}

	norm := model.Normalization{Scale: 1}
	if s.config.NormalizeOnLoad {
		norm = doc.Normalize()
	}
	s.replace(doc, norm)

	s.log.Info("model loaded",
		zap.String("path", path),
		zap.Int("submeshes", doc.SubMeshCount()),
		zap.Int("faces", doc.FaceCount()),
		zap.Float32("scale", norm.Scale))
	if diags := doc.Validate(); len(diags) > 0 {
		s.log.Warn("model has unresolved indices", zap.Int("count", len(diags)), zap.Stringer("first", diags[0]))
	}
	if !picking.CanEncode(doc.SubMeshCount()) {
		s.log.Warn("colour picking disabled, using ray picks",
			zap.Int("submeshes", doc.SubMeshCount()),
			zap.Int("max", picking.MaxPickable))
	}
	return nil
}

// Install takes ownership of a document built elsewhere. It is used as is,
// without normalizing.
func (s *Scene) Install(doc *model.Document) {
	s.replace(doc, model.Normalization{Scale: 1})
	s.log.Debug("document installed", zap.Int("submeshes", doc.SubMeshCount()))
}

func (s *Scene) replace(doc *model.Document, norm model.Normalization) {
	s.doc = doc
	s.normalization = norm
	s.rotation = math.QuatIdentity()
	s.stream = model.VertexStream{}
	s.hasStream = false
	s.ClearSelection()
}

// Document returns the installed document, or nil.
func (s *Scene) Document() *model.Document {
	return s.doc
}

// Normalization returns the mapping applied on load.
func (s *Scene) Normalization() model.Normalization {
	return s.normalization
}

// VertexStream returns the stream to draw, flattening again if an edit made
// the previous one stale.
func (s *Scene) VertexStream() (model.VertexStream, error) {
	if s.doc == nil {
		return model.VertexStream{}, ErrNoDocument
	}
	if !s.hasStream || s.doc.Stale() {
		s.stream = s.doc.Flatten()
		s.hasStream = true
		s.log.Debug("stream rebuilt",
			zap.Int("vertices", s.stream.VertexCount()),
			zap.Uint64("version", s.stream.Version))
	}
	return s.stream, nil
}

// Select marks ordinal as selected in the current document version.
func (s *Scene) Select(ordinal int) error {
	if s.doc == nil {
		return ErrNoDocument
	}
	if _, err := s.doc.SubMesh(ordinal); err != nil {
		return err
	}
	s.selection = Selection{Version: s.doc.Version(), Ordinal: ordinal}
	return nil
}

// ClearSelection drops the selection.
func (s *Scene) ClearSelection() {
	s.selection = Selection{Ordinal: picking.NoSelection}
}

// Selection returns the raw selection record.
func (s *Scene) Selection() Selection {
	return s.selection
}

// SelectedSubMesh returns the selected ordinal. ok is false when nothing is
// selected or the selection was made against another document version.
func (s *Scene) SelectedSubMesh() (ordinal int, ok bool) {
	if s.doc == nil || s.selection.Ordinal == picking.NoSelection {
		return picking.NoSelection, false
	}
	if s.selection.Version != s.doc.Version() || s.selection.Ordinal >= s.doc.SubMeshCount() {
		return picking.NoSelection, false
	}
	return s.selection.Ordinal, true
}

// PickColor returns the pick-pass colour of ordinal.
func (s *Scene) PickColor(ordinal int) (picking.Color, error) {
	if s.doc != nil && !picking.CanEncode(s.doc.SubMeshCount()) {
		return picking.Color{}, picking.ErrTooManySubMeshes
	}
	return picking.Encode(ordinal)
}

// Pick resolves a pixel read back from the pick pass of the last stream
// handed out and selects the hit sub-mesh. A background pixel clears the
// selection and returns NoSelection.
func (s *Scene) Pick(r, g, b uint8) (int, error) {
	if s.doc == nil {
		return picking.NoSelection, ErrNoDocument
	}
	if !picking.CanEncode(s.doc.SubMeshCount()) {
		s.log.Warn("colour pick refused", zap.Error(picking.ErrTooManySubMeshes))
		return picking.NoSelection, picking.ErrTooManySubMeshes
	}
	if !s.hasStream || s.stream.Version != s.doc.Version() {
		return picking.NoSelection, ErrStalePick
	}

	ordinal := picking.NoSelection
	if [3]uint8{r, g, b} != s.config.Background {
		ordinal = picking.Decode(r, g, b)
	}
	if ordinal < 0 || ordinal >= s.doc.SubMeshCount() {
		s.ClearSelection()
		return picking.NoSelection, nil
	}

	s.selection = Selection{Version: s.stream.Version, Ordinal: ordinal}
	s.log.Debug("picked", zap.Int("ordinal", ordinal), zap.String("name", s.doc.SubMeshes()[ordinal].Name))
	return ordinal, nil
}

// PickRay selects the nearest sub-mesh whose offset box the ray hits. It works
// for any sub-mesh count.
func (s *Scene) PickRay(ray picking.Ray) (int, error) {
	if s.doc == nil {
		return picking.NoSelection, ErrNoDocument
	}

	subs := s.doc.SubMeshes()
	boxes := make([]picking.AABB, len(subs))
	for i := range subs {
		b := subs[i].Bounds
		boxes[i] = picking.OffsetAABB(picking.NewAABB(b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z), subs[i].Offset)
	}

	ordinal := ray.Nearest(boxes, func(i int) bool { return subs[i].Bounds.Valid })
	if ordinal == picking.NoSelection {
		s.ClearSelection()
		return picking.NoSelection, nil
	}
	s.selection = Selection{Version: s.doc.Version(), Ordinal: ordinal}
	return ordinal, nil
}

// DeleteSubMesh removes sub-mesh i and keeps the selection pointing at the
// same sub-mesh. Deleting the selected one clears it.
func (s *Scene) DeleteSubMesh(i int) error {
	if s.doc == nil {
		return ErrNoDocument
	}
	selected, hadSelection := s.SelectedSubMesh()
	name := ""
	if sm, err := s.doc.SubMesh(i); err == nil {
		name = sm.Name
	}
	if err := s.doc.DeleteSubMesh(i); err != nil {
		return err
	}

	switch {
	case !hadSelection || selected == i:
		s.ClearSelection()
	case selected > i:
		s.selection = Selection{Version: s.doc.Version(), Ordinal: selected - 1}
	default:
		s.selection = Selection{Version: s.doc.Version(), Ordinal: selected}
	}

	s.log.Info("sub-mesh deleted", zap.Int("ordinal", i), zap.String("name", name), zap.Uint64("version", s.doc.Version()))
	return nil
}

// SetOffset moves sub-mesh i.
func (s *Scene) SetOffset(i int, offset math.Vec3) error {
	if s.doc == nil {
		return ErrNoDocument
	}
	return s.doc.SetOffset(i, offset)
}

// SetDiffuseColor recolours sub-mesh i.
func (s *Scene) SetDiffuseColor(i int, color [3]float32) error {
	if s.doc == nil {
		return ErrNoDocument
	}
	return s.doc.SetDiffuseColor(i, color)
}

// RotateBy composes a rotation of angle radians about axis onto the model rotation.
func (s *Scene) RotateBy(axis math.Vec3, angle float32) {
	s.rotation = math.QuatFromAxisAngle(axis, angle).Mul(s.rotation).Normalize()
}

// Rotation returns the whole-model rotation.
func (s *Scene) Rotation() math.Quat {
	return s.rotation
}

// ModelMatrix returns the matrix the renderer draws the model with.
func (s *Scene) ModelMatrix(offset math.Vec3, scale math.Vec3) math.Mat4 {
	return s.transform(offset, scale).Matrix()
}

func (s *Scene) transform(offset, scale math.Vec3) model.Transform {
	return model.Transform{Offset: offset, Rotation: s.rotation, Scale: scale}
}

// Export writes the document with the scene rotation and the given whole-model
// offset and scale baked in.
func (s *Scene) Export(path string, offset, scale math.Vec3) (model.ExportStats, error) {
	if s.doc == nil {
		return model.ExportStats{}, ErrNoDocument
	}
	stats, err := s.doc.ExportWithStats(path, s.transform(offset, scale), model.ExportOptions{Header: s.config.ExportHeader})
	if err != nil {
		s.log.Error("export failed", zap.String("path", path), zap.Error(err))
		return stats, fmt.Errorf("export %s: %w", path, err)
	}
	return stats, nil
}

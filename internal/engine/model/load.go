package model

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Faultbox/meshview/internal/logger"
	"github.com/Faultbox/meshview/pkg/formats"
	"github.com/Faultbox/meshview/pkg/math"
)

// LoadOptions controls post-processing after parsing.
type LoadOptions struct {
	// SynthesizeNormals fills the normal pool when the file declares none.
	SynthesizeNormals bool
}

// DefaultLoadOptions returns the options Load uses.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{SynthesizeNormals: true}
}

// Load reads an OBJ file and the material libraries it names.
func Load(path string) (*Document, error) {
	return LoadWithOptions(path, DefaultLoadOptions())
}

// LoadWithOptions is Load with explicit post-processing options.
func LoadWithOptions(path string, opts LoadOptions) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	doc, err := DecodeWithOptions(data, filepath.Dir(path), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	doc.Source = path
	return doc, nil
}

// Decode builds a document from OBJ bytes. Material libraries resolve against dir.
func Decode(data []byte, dir string) (*Document, error) {
	return DecodeWithOptions(data, dir, DefaultLoadOptions())
}

// DecodeWithOptions is Decode with explicit post-processing options.
func DecodeWithOptions(data []byte, dir string, opts LoadOptions) (*Document, error) {
	obj, err := formats.ParseOBJ(data)
	if err != nil {
		return nil, err
	}

	log := logger.Named("model")
	for directive, n := range obj.Ignored {
		log.Debug("ignored directive", zap.String("directive", directive), zap.Int("count", n))
	}

	libs := loadMaterialLibs(obj.MaterialLibs, dir, log)

	pools := GeometryPools{
		Positions: toVecs(obj.Positions),
		Normals:   toVecs(obj.Normals),
		TexCoords: toVecs(obj.TexCoords),
	}

	subMeshes := make([]SubMesh, 0, len(obj.Groups))
	for _, g := range obj.Groups {
		sm := SubMesh{
			Name:     g.Name,
			Material: resolveMaterial(g, libs, log),
			Faces:    make([]Face, len(g.Triangles)),
		}
		for i, tri := range g.Triangles {
			sm.Faces[i] = Face{Line: tri.Line}
			for k, c := range tri.Corners {
				sm.Faces[i].Corners[k] = Corner(c)
			}
		}
		subMeshes = append(subMeshes, sm)
	}

	doc := NewDocument(pools, subMeshes)
	if opts.SynthesizeNormals && len(pools.Normals) == 0 {
		doc.SynthesizeNormals()
	}

	log.Debug("model decoded",
		zap.Int("positions", len(pools.Positions)),
		zap.Int("normals", len(doc.Pools.Normals)),
		zap.Int("texcoords", len(pools.TexCoords)),
		zap.Int("submeshes", len(subMeshes)),
		zap.Int("faces", doc.FaceCount()))
	return doc, nil
}

// loadMaterialLibs parses every named library. A library that is missing or
// fails to parse is logged and skipped.
func loadMaterialLibs(names []string, dir string, log *zap.Logger) []*formats.MTL {
	var libs []*formats.MTL
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warn("material library unavailable", zap.String("path", path), zap.Error(err))
			continue
		}
		mtl, err := formats.ParseMTL(data)
		if err != nil {
			log.Warn("material library malformed", zap.String("path", path), zap.Error(err))
			continue
		}
		libs = append(libs, mtl)
	}
	return libs
}

// resolveMaterial binds a group to its material. Later libraries win on name clashes.
func resolveMaterial(g formats.OBJGroup, libs []*formats.MTL, log *zap.Logger) Material {
	if g.Material == "" {
		return DefaultMaterial("")
	}
	for i := len(libs) - 1; i >= 0; i-- {
		if m, ok := libs[i].Lookup(g.Material); ok {
			return fromMTL(m)
		}
	}
	log.Debug("material not found, using default", zap.String("material", g.Material), zap.Int("line", g.Line))
	return DefaultMaterial(g.Material)
}

func fromMTL(m *formats.MTLMaterial) Material {
	return Material{
		Name:           m.Name,
		Shininess:      m.Shininess,
		Ambient:        m.Ambient,
		Diffuse:        m.Diffuse,
		Specular:       m.Specular,
		OpticalDensity: m.OpticalDensity,
		Transparency:   m.Dissolve,
		Illum:          m.Illum,
		TextureMap:     m.DiffuseMap,
	}
}

func toMTL(m Material) formats.MTLMaterial {
	return formats.MTLMaterial{
		Name:           m.Name,
		Shininess:      m.Shininess,
		Ambient:        m.Ambient,
		Diffuse:        m.Diffuse,
		Specular:       m.Specular,
		OpticalDensity: m.OpticalDensity,
		Dissolve:       m.Transparency,
		Illum:          m.Illum,
		DiffuseMap:     m.TextureMap,
	}
}

func toVecs(in [][3]float32) []math.Vec3 {
	if len(in) == 0 {
		return nil
	}
	out := make([]math.Vec3, len(in))
	for i, v := range in {
		out[i] = math.FromArray(v)
	}
	return out
}

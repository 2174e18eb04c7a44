package picking

import "errors"

// MaxPickable is the number of sub-mesh ordinals the colour codec can carry.
// The red channel holds ordinal+1 and 255 is left for the background.
const MaxPickable = 254

// NoSelection is the decoded value of a background pixel.
const NoSelection = -1

var (
	// ErrOrdinalOutOfRange is returned by Encode for ordinals outside 0..MaxPickable-1.
	ErrOrdinalOutOfRange = errors.New("picking: ordinal out of range")
	// ErrTooManySubMeshes reports that colour picking cannot address every sub-mesh.
	ErrTooManySubMeshes = errors.New("picking: too many sub-meshes for colour picking")
)

// Color is a normalized RGB pick colour.
type Color struct {
	R, G, B float32
}

// Encode returns the flat colour drawn for ordinal in the pick pass.
func Encode(ordinal int) (Color, error) {
	rgb, err := EncodeRGB8(ordinal)
	if err != nil {
		return Color{}, err
	}
	return Color{R: float32(rgb[0]) / 255}, nil
}

// EncodeRGB8 is Encode in 8-bit channels.
func EncodeRGB8(ordinal int) ([3]uint8, error) {
	if ordinal < 0 || ordinal >= MaxPickable {
		return [3]uint8{}, ErrOrdinalOutOfRange
	}
	return [3]uint8{uint8(ordinal + 1), 0, 0}, nil
}

// Decode maps a read-back pixel to an ordinal. White is NoSelection, and so is
// black, since red 0 decodes to -1.
func Decode(r, g, b uint8) int {
	if r == 255 && g == 255 && b == 255 {
		return NoSelection
	}
	return int(r) - 1
}

// CanEncode reports whether count sub-meshes fit the codec.
func CanEncode(count int) bool {
	return count <= MaxPickable
}

package picking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshview/pkg/math"
)

func TestCodecRoundTrip(t *testing.T) {
	for i := 0; i < MaxPickable; i++ {
		rgb, err := EncodeRGB8(i)
		require.NoError(t, err)
		assert.Equal(t, i, Decode(rgb[0], rgb[1], rgb[2]), "ordinal %d", i)

		c, err := Encode(i)
		require.NoError(t, err)
		assert.InDelta(t, float32(i+1)/255, c.R, 1e-6)
		assert.Zero(t, c.G)
		assert.Zero(t, c.B)
	}
}

func TestEncodeOutOfRange(t *testing.T) {
	for _, i := range []int{-1, MaxPickable, 1000} {
		_, err := Encode(i)
		assert.Equal(t, ErrOrdinalOutOfRange, err)
		_, err = EncodeRGB8(i)
		assert.Equal(t, ErrOrdinalOutOfRange, err)
	}
}

func TestDecodeBackground(t *testing.T) {
	assert.Equal(t, NoSelection, Decode(255, 255, 255))
	assert.Equal(t, NoSelection, Decode(0, 0, 0))
	assert.Equal(t, 254, Decode(255, 0, 0), "red 255 is not the background")
	assert.Equal(t, 4, Decode(5, 9, 9), "only red carries the ordinal")
}

func TestCanEncode(t *testing.T) {
	assert.True(t, CanEncode(0))
	assert.True(t, CanEncode(MaxPickable))
	assert.False(t, CanEncode(MaxPickable+1))
}

func TestIntersectAABB(t *testing.T) {
	box := NewAABB(1, 1, 1, -1, -1, -1)
	assert.Equal(t, [3]float32{-1, -1, -1}, box.Min)

	tests := []struct {
		name  string
		ray   Ray
		hit   bool
		wantT float32
	}{
		{"front", NewRay(math.Vec3{Z: 5}, math.Vec3{Z: -1}), true, 4},
		{"inside", NewRay(math.Vec3{}, math.Vec3{X: 1}), true, 1},
		{"behind", NewRay(math.Vec3{Z: 5}, math.Vec3{Z: 1}), false, 0},
		{"parallel miss", NewRay(math.Vec3{Y: 3, Z: 5}, math.Vec3{Z: -1}), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, hit := tt.ray.IntersectAABB(box)
			assert.Equal(t, tt.hit, hit)
			if tt.hit {
				assert.InDelta(t, tt.wantT, d, 1e-5)
			}
		})
	}
}

func TestNearest(t *testing.T) {
	unit := NewAABB(-0.5, -0.5, -0.5, 0.5, 0.5, 0.5)
	boxes := []AABB{
		OffsetAABB(unit, math.Vec3{Z: -10}),
		OffsetAABB(unit, math.Vec3{Z: -3}),
		OffsetAABB(unit, math.Vec3{X: 5}),
	}
	ray := NewRay(math.Vec3{}, math.Vec3{Z: -2})

	assert.Equal(t, 1, ray.Nearest(boxes, nil))
	assert.Equal(t, 0, ray.Nearest(boxes, func(i int) bool { return i != 1 }))
	assert.Equal(t, NoSelection, NewRay(math.Vec3{}, math.Vec3{Y: 1}).Nearest(boxes, nil))
}

func TestScreenToRay(t *testing.T) {
	view := math.LookAt(math.Vec3{Z: 5}, math.Vec3{}, math.Vec3{Y: 1})
	proj := math.Perspective(1.0, 1.0, 0.1, 100)
	inv := proj.Mul(view).Inverse()

	ray := ScreenToRay(50, 50, 100, 100, inv)
	assert.InDelta(t, 0, ray.Direction[0], 1e-4)
	assert.InDelta(t, 0, ray.Direction[1], 1e-4)
	assert.InDelta(t, -1, ray.Direction[2], 1e-4)

	_, hit := ray.IntersectAABB(NewAABB(-1, -1, -1, 1, 1, 1))
	assert.True(t, hit)
}

// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "fmt"

// TextureStagingData holds pixel data for a texture or texture array pending GPU upload.
// Layers are stored back to back; each layer is Width*Height*BytesPerTexel bytes.
type TextureStagingData struct {
	// Pixels is the raw texel data for every layer, tightly packed.
	Pixels []byte
	// Width is the width of each layer in texels.
	Width uint32
	// Height is the height of each layer in texels.
	Height uint32
	// Layers is the number of array layers. Zero is treated as one.
	Layers uint32
	// BytesPerTexel is the size of one texel, 4 for RGBA8 and R32Float.
	BytesPerTexel uint32
}

// LayerCount returns the number of array layers, treating an unset count as one.
//
// Returns:
//   - uint32: the layer count (at least 1)
func (t TextureStagingData) LayerCount() uint32 {
	if t.Layers == 0 {
		return 1
	}
	return t.Layers
}

// LayerSize returns the byte size of one layer.
//
// Returns:
//   - int: Width*Height*BytesPerTexel, with BytesPerTexel defaulting to 4
func (t TextureStagingData) LayerSize() int {
	return int(t.Width) * int(t.Height) * int(Coalesce(t.BytesPerTexel, 4))
}

// Layer returns the bytes of one layer, or nil when the index is out of range.
//
// Parameters:
//   - i: the layer index
//
// Returns:
//   - []byte: a sub-slice of Pixels
func (t TextureStagingData) Layer(i int) []byte {
	size := t.LayerSize()
	if i < 0 || i >= int(t.LayerCount()) || (i+1)*size > len(t.Pixels) {
		return nil
	}
	return t.Pixels[i*size : (i+1)*size]
}

// Validate checks that the pixel slice matches the declared dimensions.
//
// Returns:
//   - error: an error describing the mismatch, or nil
func (t TextureStagingData) Validate() error {
	if t.Width == 0 || t.Height == 0 {
		return fmt.Errorf("texture has zero extent %dx%d", t.Width, t.Height)
	}
	want := t.LayerSize() * int(t.LayerCount())
	if len(t.Pixels) != want {
		return fmt.Errorf("texture pixel data is %d bytes, expected %d", len(t.Pixels), want)
	}
	return nil
}

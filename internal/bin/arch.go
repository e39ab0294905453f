// Package bin implements the binary wire dialects of the AEP project
// format: a 32-bit pointer dialect ("x86") and a 64-bit pointer
// dialect ("x64"). Both dialects share one logical schema; only field
// order, pointer/count width, and a handful of record sizes differ,
// and that divergence is kept to per-architecture lookup tables plus
// two places that branch on the architecture directly: the asset
// record's field order and the layer record's extra x64 padding.
package bin

import (
	"fmt"

	"github.com/aeptools/aep/internal/model"
)

// Architecture selects the on-wire pointer width and struct layout.
type Architecture int

const (
	X86 Architecture = iota
	X64
)

func (a Architecture) String() string {
	switch a {
	case X86:
		return "x86"
	case X64:
		return "x64"
	default:
		return fmt.Sprintf("Architecture(%d)", int(a))
	}
}

// PointerSize is the width, in bytes, of a pointer or count field.
// Pointers and counts always share the same width in this format.
var PointerSize = map[Architecture]int{
	X86: 4,
	X64: 8,
}

// AssetSize is the fixed byte size of one asset record.
var AssetSize = map[Architecture]int{
	X86: 20,
	X64: 32,
}

// AssetTerminatorSize is the length of the all-zero block that ends
// the assets section, before the layers-base pointer.
const AssetTerminatorSize = 16

// LayersSectionPointerBlockSize is the length of the terminator tail
// that carries the layers-section base pointer, padded to 16 bytes.
const LayersSectionPointerBlockSize = 16

// LayerSize is the fixed byte size of one layer record.
var LayerSize = map[Architecture]int{
	X86: 56,
	X64: 112,
}

// LayerTimelineSize is the fixed byte size of one timeline record.
const LayerTimelineSize = 12

// Per-architecture keyframe record sizes. Most variants are the same
// size on both architectures; Marker is the exception.
var (
	PositionKeyframeSize    = map[Architecture]int{X86: 16, X64: 16}
	AnchorPointKeyframeSize = map[Architecture]int{X86: 16, X64: 16}
	ColourKeyframeSize      = map[Architecture]int{X86: 8, X64: 8}
	ScaleKeyframeSize       = map[Architecture]int{X86: 12, X64: 12}
	AlphaKeyframeSize       = map[Architecture]int{X86: 8, X64: 8}
	RotationKeyframeSize    = map[Architecture]int{X86: 8, X64: 8}
	SizeKeyframeSize        = map[Architecture]int{X86: 8, X64: 8}
	MarkerKeyframeSize      = map[Architecture]int{X86: 12, X64: 16}
)

// layerTypeCodes and blendModeCodes are the bidirectional nibble <->
// symbol lookup tables used by both the decoder (fails on unknown
// codes) and the encoder (can never produce an unknown code, since the
// model's variant sets are closed).
var layerTypeCodes = map[uint8]model.LayerType{
	0x4: model.LayerComposition,
	0x6: model.LayerColour,
	0x7: model.LayerTexture,
}

var layerTypeNibbles = invertLayerTypes(layerTypeCodes)

var blendModeCodes = map[uint8]model.BlendMode{
	0x2: model.BlendNormal,
	0x4: model.BlendAdditive,
	0x5: model.BlendUnknown,
}

var blendModeNibbles = invertBlendModes(blendModeCodes)

func invertLayerTypes(m map[uint8]model.LayerType) map[model.LayerType]uint8 {
	inv := make(map[model.LayerType]uint8, len(m))
	for k, v := range m {
		inv[v] = k
	}
	return inv
}

func invertBlendModes(m map[uint8]model.BlendMode) map[model.BlendMode]uint8 {
	inv := make(map[model.BlendMode]uint8, len(m))
	for k, v := range m {
		inv[v] = k
	}
	return inv
}

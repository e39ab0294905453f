// Package jsoncodec implements the human-readable JSON dialect of the
// AEP project format: a structural mirror of the binary model with
// stable field names, applying the same bounds checks the binary codec
// applies, so the two dialects stay losslessly interconvertible.
package jsoncodec

import (
	"fmt"

	"github.com/aeptools/aep/internal/model"
)

type document struct {
	Textures     orderedMap[textureDoc]     `json:"textures"`
	Compositions orderedMap[compositionDoc] `json:"compositions"`
}

// Required scalar/string fields across this file are pointer-typed
// rather than plain values, so encoding/json can tell "field absent"
// (nil) apart from "field present with its zero value" (0, ""). A
// nil pointer is rejected by requireField with a missing-field error
// instead of silently decoding as width 0, an empty name, and so on.
//
// Width/height/frame/unknown fields are decoded as plain int/int64
// rather than their eventual uint16/uint32 model type, so an
// out-of-range JSON number reaches this package's own
// model.CheckU16/CheckU32 bounds check instead of being rejected
// earlier by encoding/json's own type-overflow error.
type textureDoc struct {
	Width  *int `json:"width"`
	Height *int `json:"height"`
}

type compositionDoc struct {
	Width  *int       `json:"width"`
	Height *int       `json:"height"`
	Layers []layerDoc `json:"layers"`
}

type layerDoc struct {
	Name      *string `json:"name"`
	Type      *string `json:"type"`
	BlendMode *string `json:"blend_mode"`

	TimelineStart    *int `json:"timeline_start"`
	TimelineUnknown1 *int `json:"timeline_unknown1"`
	TimelineDuration *int `json:"timeline_duration"`
	TimelineUnknown2 *int `json:"timeline_unknown2"`

	PositionKeyframes    []positionKeyframeDoc    `json:"position_keyframes,omitempty"`
	AnchorPointKeyframes []anchorPointKeyframeDoc `json:"anchor_point_keyframes,omitempty"`
	ColourKeyframes      []colourKeyframeDoc      `json:"colour_keyframes,omitempty"`
	ScaleKeyframes       []scaleKeyframeDoc       `json:"scale_keyframes,omitempty"`
	AlphaKeyframes       []alphaKeyframeDoc       `json:"alpha_keyframes,omitempty"`
	RotationXKeyframes   []rotationKeyframeDoc    `json:"rotation_x_keyframes,omitempty"`
	RotationYKeyframes   []rotationKeyframeDoc    `json:"rotation_y_keyframes,omitempty"`
	RotationZKeyframes   []rotationKeyframeDoc    `json:"rotation_z_keyframes,omitempty"`
	SizeKeyframes        []sizeKeyframeDoc        `json:"size_keyframes,omitempty"`
	Markers              []markerDoc              `json:"markers,omitempty"`
}

type positionKeyframeDoc struct {
	Frame *int     `json:"frame"`
	X     *float32 `json:"x"`
	Y     *float32 `json:"y"`
	Z     *float32 `json:"z"`
}

type anchorPointKeyframeDoc struct {
	Frame *int     `json:"frame"`
	X     *float32 `json:"x"`
	Y     *float32 `json:"y"`
	Z     *float32 `json:"z"`
}

type colourKeyframeDoc struct {
	Frame *int    `json:"frame"`
	RGBA  *string `json:"rgba"`
}

type scaleKeyframeDoc struct {
	Frame *int     `json:"frame"`
	X     *float32 `json:"x"`
	Y     *float32 `json:"y"`
}

type alphaKeyframeDoc struct {
	Frame *int     `json:"frame"`
	Value *float32 `json:"value"`
}

type rotationKeyframeDoc struct {
	Frame    *int     `json:"frame"`
	Rotation *float32 `json:"rotation"`
}

type sizeKeyframeDoc struct {
	Frame  *int `json:"frame"`
	Width  *int `json:"width"`
	Height *int `json:"height"`
}

type markerDoc struct {
	Frame   *int    `json:"frame"`
	Unknown *int64  `json:"unknown"`
	Name    *string `json:"name"`
}

var layerTypeNames = map[model.LayerType]string{
	model.LayerComposition: "composition",
	model.LayerColour:      "colour",
	model.LayerTexture:     "texture",
}

var layerTypeValues = invertStringMap(layerTypeNames)

var blendModeNames = map[model.BlendMode]string{
	model.BlendNormal:   "normal",
	model.BlendAdditive: "additive",
	model.BlendUnknown:  "unknown",
}

var blendModeValues = invertStringMap(blendModeNames)

func invertStringMap[K comparable](m map[K]string) map[string]K {
	inv := make(map[string]K, len(m))
	for k, v := range m {
		inv[v] = k
	}
	return inv
}

// requireField dereferences a presence-checked JSON field, reporting
// field as missing if the document never set it. This is how the
// codec tells "absent" apart from encoding/json's usual zero-fill of
// a missing key.
func requireField[T any](p *T, field string) (T, error) {
	var zero T
	if p == nil {
		return zero, fmt.Errorf("missing required field %q", field)
	}
	return *p, nil
}

// ptr takes the address of a fresh copy of v, for populating the
// pointer-typed required fields above from a model value.
func ptr[T any](v T) *T {
	return &v
}

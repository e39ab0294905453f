// Package model defines the in-memory representation of an AEP project:
// its textures, compositions, layers, and the ten keyframe track kinds a
// layer may carry. The types here are plain data — the binary and JSON
// codecs are the only things that construct or walk them.
package model

import "strings"

// Project owns an ordered set of textures and an ordered set of
// compositions. A Project is immutable once constructed; NewProject is
// the validating constructor, and it re-validates every composition's
// layer references against the asset list. A Project built directly as
// a struct literal skips that validation.
type Project struct {
	Textures     []Texture
	Compositions []Composition
}

// Texture is a named bitmap asset. Only its dimensions are modeled —
// pixel data is outside this codec's scope.
type Texture struct {
	Name   string
	Width  uint16
	Height uint16
}

// Composition is a named scene containing an ordered list of layers.
type Composition struct {
	Name     string
	Width    uint16
	Height   uint16
	Layers   []Layer
}

// LayerType is the closed set of layer kinds the format recognizes.
type LayerType int

const (
	LayerComposition LayerType = iota
	LayerColour
	LayerTexture
)

// BlendMode is the closed set of blend modes the format recognizes.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendAdditive
	BlendUnknown
)

// Timeline is a layer's optional timing group. It is either fully
// present or fully absent — there is no partial timeline.
type Timeline struct {
	Start     uint16
	Unknown1  uint16
	Duration  uint16
	Unknown2  uint32
}

// TimelineUnknown2Value is the only value the format has ever been
// observed to carry in a timeline's reserved Unknown2 field. The
// decoder rejects any other value; the encoder always writes it.
const TimelineUnknown2Value uint32 = 4096

// Layer is a single animated element within a composition.
type Layer struct {
	Name      string
	Type      LayerType
	BlendMode BlendMode
	Timeline  *Timeline

	PositionKeyframes     []PositionKeyframe
	AnchorPointKeyframes  []AnchorPointKeyframe
	ColourKeyframes       []ColourKeyframe
	ScaleKeyframes        []ScaleKeyframe
	AlphaKeyframes        []AlphaKeyframe
	RotationXKeyframes    []RotationKeyframe
	RotationYKeyframes    []RotationKeyframe
	RotationZKeyframes    []RotationKeyframe
	SizeKeyframes         []SizeKeyframe
	Markers               []Marker
}

// AssetName derives the name used to resolve this layer's asset
// reference: the substring after the first hyphen in Name, or Name
// itself if there is no hyphen.
func (l Layer) AssetName() string {
	if idx := strings.IndexByte(l.Name, '-'); idx >= 0 {
		return l.Name[idx+1:]
	}
	return l.Name
}

// PositionKeyframe animates a layer's 3D position.
type PositionKeyframe struct {
	Frame   uint16
	X, Y, Z float32
}

// AnchorPointKeyframe animates a layer's anchor point. X, Y, and Z are
// stored here in the 0..=1 in-memory range; the wire form is scaled by
// 100.
type AnchorPointKeyframe struct {
	Frame   uint16
	X, Y, Z float32
}

// ColourKeyframe animates a layer's RGBA colour.
type ColourKeyframe struct {
	Frame      uint16
	R, G, B, A uint8
}

// ScaleKeyframe animates a layer's 2D scale. X and Y are stored here in
// the 0..=1 in-memory range; the wire form is scaled by 100.
type ScaleKeyframe struct {
	Frame uint16
	X, Y  float32
}

// AlphaKeyframe animates a layer's opacity. Value is stored here in the
// 0..=1 in-memory range; the wire form is scaled by 100.
type AlphaKeyframe struct {
	Frame uint16
	Value float32
}

// RotationKeyframe animates one rotation axis, in degrees.
type RotationKeyframe struct {
	Frame   uint16
	Degrees float32
}

// SizeKeyframe animates a layer's pixel dimensions.
type SizeKeyframe struct {
	Frame          uint16
	Width, Height  uint16
}

// Marker is a named, timed annotation on a layer's timeline.
type Marker struct {
	Frame   uint16
	Unknown uint32
	Name    string
}

// HasTimeline reports whether the layer carries a timeline group.
func (l Layer) HasTimeline() bool {
	return l.Timeline != nil
}

package jsoncodec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aeptools/aep/internal/model"
)

// Decode parses a JSON-dialect AEP project from data, applying the
// same u16/u32 bounds checks the binary codec applies and normalizing
// empty keyframe arrays to absent tracks.
func Decode(data []byte) (*model.Project, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	textures := make([]model.Texture, 0, len(doc.Textures))
	for _, e := range doc.Textures {
		name := e.Key
		width, err := requireField(e.Value.Width, fmt.Sprintf("texture %q width", name))
		if err != nil {
			return nil, err
		}
		height, err := requireField(e.Value.Height, fmt.Sprintf("texture %q height", name))
		if err != nil {
			return nil, err
		}
		if err := model.CheckU16(int64(width), fmt.Sprintf("texture %q width", name)); err != nil {
			return nil, err
		}
		if err := model.CheckU16(int64(height), fmt.Sprintf("texture %q height", name)); err != nil {
			return nil, err
		}
		textures = append(textures, model.Texture{Name: name, Width: uint16(width), Height: uint16(height)})
	}

	compositions := make([]model.Composition, 0, len(doc.Compositions))
	for _, e := range doc.Compositions {
		name, c := e.Key, e.Value
		width, err := requireField(c.Width, fmt.Sprintf("composition %q width", name))
		if err != nil {
			return nil, err
		}
		height, err := requireField(c.Height, fmt.Sprintf("composition %q height", name))
		if err != nil {
			return nil, err
		}
		if err := model.CheckU16(int64(width), fmt.Sprintf("composition %q width", name)); err != nil {
			return nil, err
		}
		if err := model.CheckU16(int64(height), fmt.Sprintf("composition %q height", name)); err != nil {
			return nil, err
		}

		var layers []model.Layer
		for _, ld := range c.Layers {
			layer, err := decodeLayer(ld)
			if err != nil {
				return nil, fmt.Errorf("composition %q: %w", name, err)
			}
			layers = append(layers, *layer)
		}

		compositions = append(compositions, model.Composition{Name: name, Width: uint16(width), Height: uint16(height), Layers: layers})
	}

	return model.NewProject(textures, compositions)
}

func decodeLayer(d layerDoc) (*model.Layer, error) {
	name, err := requireField(d.Name, "name")
	if err != nil {
		return nil, err
	}
	typeName, err := requireField(d.Type, "type")
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", name, err)
	}
	blendName, err := requireField(d.BlendMode, "blend_mode")
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", name, err)
	}

	layerType, ok := layerTypeValues[typeName]
	if !ok {
		return nil, fmt.Errorf("layer %q has unrecognized type %q", name, typeName)
	}
	blendMode, ok := blendModeValues[blendName]
	if !ok {
		return nil, fmt.Errorf("layer %q has unrecognized blend_mode %q", name, blendName)
	}

	timeline, err := decodeTimeline(d)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", name, err)
	}

	positionKeyframes, err := decodePositionKeyframes(d.PositionKeyframes)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", name, err)
	}
	anchorPointKeyframes, err := decodeAnchorPointKeyframes(d.AnchorPointKeyframes)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", name, err)
	}
	colourKeyframes, err := decodeColourKeyframes(d.ColourKeyframes)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", name, err)
	}
	scaleKeyframes, err := decodeScaleKeyframes(d.ScaleKeyframes)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", name, err)
	}
	alphaKeyframes, err := decodeAlphaKeyframes(d.AlphaKeyframes)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", name, err)
	}
	rotationXKeyframes, err := decodeRotationKeyframes(d.RotationXKeyframes, "rotation_x_keyframes")
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", name, err)
	}
	rotationYKeyframes, err := decodeRotationKeyframes(d.RotationYKeyframes, "rotation_y_keyframes")
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", name, err)
	}
	rotationZKeyframes, err := decodeRotationKeyframes(d.RotationZKeyframes, "rotation_z_keyframes")
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", name, err)
	}
	sizeKeyframes, err := decodeSizeKeyframes(d.SizeKeyframes)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", name, err)
	}
	markers, err := decodeMarkers(d.Markers)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", name, err)
	}

	return &model.Layer{
		Name:                 name,
		Type:                 layerType,
		BlendMode:            blendMode,
		Timeline:             timeline,
		PositionKeyframes:    positionKeyframes,
		AnchorPointKeyframes: anchorPointKeyframes,
		ColourKeyframes:      colourKeyframes,
		ScaleKeyframes:       scaleKeyframes,
		AlphaKeyframes:       alphaKeyframes,
		RotationXKeyframes:   rotationXKeyframes,
		RotationYKeyframes:   rotationYKeyframes,
		RotationZKeyframes:   rotationZKeyframes,
		SizeKeyframes:        sizeKeyframes,
		Markers:              markers,
	}, nil
}

func decodeTimeline(d layerDoc) (*model.Timeline, error) {
	fields := []*int{d.TimelineStart, d.TimelineUnknown1, d.TimelineDuration, d.TimelineUnknown2}
	present := 0
	for _, f := range fields {
		if f != nil {
			present++
		}
	}
	if present == 0 {
		return nil, nil
	}
	if present != len(fields) {
		return nil, fmt.Errorf("timeline fields must be all present or all null")
	}

	if err := model.CheckU16(int64(*d.TimelineStart), "timeline_start"); err != nil {
		return nil, err
	}
	if err := model.CheckU16(int64(*d.TimelineUnknown1), "timeline_unknown1"); err != nil {
		return nil, err
	}
	if err := model.CheckU16(int64(*d.TimelineDuration), "timeline_duration"); err != nil {
		return nil, err
	}
	if err := model.CheckU32(int64(*d.TimelineUnknown2), "timeline_unknown2"); err != nil {
		return nil, err
	}

	return &model.Timeline{
		Start:    uint16(*d.TimelineStart),
		Unknown1: uint16(*d.TimelineUnknown1),
		Duration: uint16(*d.TimelineDuration),
		Unknown2: uint32(*d.TimelineUnknown2),
	}, nil
}

// checkFrame rejects both out-of-range frame numbers and 0xFFFF, which
// the wire format reserves exclusively as the keyframe-list sentinel
// and can never carry as real keyframe data.
func checkFrame(frame int, field string) error {
	if err := model.CheckU16(int64(frame), field); err != nil {
		return err
	}
	if frame == 0xffff {
		return fmt.Errorf("%s (%d) is reserved for the list sentinel", field, frame)
	}
	return nil
}

func decodePositionKeyframes(docs []positionKeyframeDoc) ([]model.PositionKeyframe, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	out := make([]model.PositionKeyframe, 0, len(docs))
	for _, d := range docs {
		frame, err := requireField(d.Frame, "position_keyframes frame")
		if err != nil {
			return nil, err
		}
		x, err := requireField(d.X, "position_keyframes x")
		if err != nil {
			return nil, err
		}
		y, err := requireField(d.Y, "position_keyframes y")
		if err != nil {
			return nil, err
		}
		z, err := requireField(d.Z, "position_keyframes z")
		if err != nil {
			return nil, err
		}
		if err := checkFrame(frame, "position_keyframes frame"); err != nil {
			return nil, err
		}
		out = append(out, model.PositionKeyframe{Frame: uint16(frame), X: x, Y: y, Z: z})
	}
	return out, nil
}

func decodeAnchorPointKeyframes(docs []anchorPointKeyframeDoc) ([]model.AnchorPointKeyframe, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	out := make([]model.AnchorPointKeyframe, 0, len(docs))
	for _, d := range docs {
		frame, err := requireField(d.Frame, "anchor_point_keyframes frame")
		if err != nil {
			return nil, err
		}
		x, err := requireField(d.X, "anchor_point_keyframes x")
		if err != nil {
			return nil, err
		}
		y, err := requireField(d.Y, "anchor_point_keyframes y")
		if err != nil {
			return nil, err
		}
		z, err := requireField(d.Z, "anchor_point_keyframes z")
		if err != nil {
			return nil, err
		}
		if err := checkFrame(frame, "anchor_point_keyframes frame"); err != nil {
			return nil, err
		}
		out = append(out, model.AnchorPointKeyframe{Frame: uint16(frame), X: x, Y: y, Z: z})
	}
	return out, nil
}

func decodeScaleKeyframes(docs []scaleKeyframeDoc) ([]model.ScaleKeyframe, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	out := make([]model.ScaleKeyframe, 0, len(docs))
	for _, d := range docs {
		frame, err := requireField(d.Frame, "scale_keyframes frame")
		if err != nil {
			return nil, err
		}
		x, err := requireField(d.X, "scale_keyframes x")
		if err != nil {
			return nil, err
		}
		y, err := requireField(d.Y, "scale_keyframes y")
		if err != nil {
			return nil, err
		}
		if err := checkFrame(frame, "scale_keyframes frame"); err != nil {
			return nil, err
		}
		out = append(out, model.ScaleKeyframe{Frame: uint16(frame), X: x, Y: y})
	}
	return out, nil
}

func decodeAlphaKeyframes(docs []alphaKeyframeDoc) ([]model.AlphaKeyframe, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	out := make([]model.AlphaKeyframe, 0, len(docs))
	for _, d := range docs {
		frame, err := requireField(d.Frame, "alpha_keyframes frame")
		if err != nil {
			return nil, err
		}
		value, err := requireField(d.Value, "alpha_keyframes value")
		if err != nil {
			return nil, err
		}
		if err := checkFrame(frame, "alpha_keyframes frame"); err != nil {
			return nil, err
		}
		out = append(out, model.AlphaKeyframe{Frame: uint16(frame), Value: value})
	}
	return out, nil
}

func decodeRotationKeyframes(docs []rotationKeyframeDoc, field string) ([]model.RotationKeyframe, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	out := make([]model.RotationKeyframe, 0, len(docs))
	for _, d := range docs {
		frame, err := requireField(d.Frame, field+" frame")
		if err != nil {
			return nil, err
		}
		rotation, err := requireField(d.Rotation, field+" rotation")
		if err != nil {
			return nil, err
		}
		if err := checkFrame(frame, field+" frame"); err != nil {
			return nil, err
		}
		out = append(out, model.RotationKeyframe{Frame: uint16(frame), Degrees: rotation})
	}
	return out, nil
}

func decodeSizeKeyframes(docs []sizeKeyframeDoc) ([]model.SizeKeyframe, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	out := make([]model.SizeKeyframe, 0, len(docs))
	for _, d := range docs {
		frame, err := requireField(d.Frame, "size_keyframes frame")
		if err != nil {
			return nil, err
		}
		width, err := requireField(d.Width, "size_keyframes width")
		if err != nil {
			return nil, err
		}
		height, err := requireField(d.Height, "size_keyframes height")
		if err != nil {
			return nil, err
		}
		if err := checkFrame(frame, "size_keyframes frame"); err != nil {
			return nil, err
		}
		if err := model.CheckU16(int64(width), "size_keyframes width"); err != nil {
			return nil, err
		}
		if err := model.CheckU16(int64(height), "size_keyframes height"); err != nil {
			return nil, err
		}
		out = append(out, model.SizeKeyframe{Frame: uint16(frame), Width: uint16(width), Height: uint16(height)})
	}
	return out, nil
}

func decodeMarkers(docs []markerDoc) ([]model.Marker, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	out := make([]model.Marker, 0, len(docs))
	for _, d := range docs {
		frame, err := requireField(d.Frame, "markers frame")
		if err != nil {
			return nil, err
		}
		unknown, err := requireField(d.Unknown, "markers unknown")
		if err != nil {
			return nil, err
		}
		name, err := requireField(d.Name, "name")
		if err != nil {
			return nil, err
		}
		if err := checkFrame(frame, "markers frame"); err != nil {
			return nil, err
		}
		if err := model.CheckU32(unknown, "markers unknown"); err != nil {
			return nil, err
		}
		out = append(out, model.Marker{Frame: uint16(frame), Unknown: uint32(unknown), Name: name})
	}
	return out, nil
}

func decodeColourKeyframes(docs []colourKeyframeDoc) ([]model.ColourKeyframe, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	out := make([]model.ColourKeyframe, 0, len(docs))
	for _, d := range docs {
		frame, err := requireField(d.Frame, "colour_keyframes frame")
		if err != nil {
			return nil, err
		}
		rgba, err := requireField(d.RGBA, "colour_keyframes rgba")
		if err != nil {
			return nil, err
		}
		if err := checkFrame(frame, "colour_keyframes frame"); err != nil {
			return nil, err
		}
		r, g, b, a, err := parseRGBAHex(rgba)
		if err != nil {
			return nil, err
		}
		out = append(out, model.ColourKeyframe{Frame: uint16(frame), R: r, G: g, B: b, A: a})
	}
	return out, nil
}

func parseRGBAHex(s string) (r, g, b, a uint8, err error) {
	if !strings.HasPrefix(s, "#") {
		return 0, 0, 0, 0, fmt.Errorf("invalid rgba colour (%s)", s)
	}
	hex := s[1:]
	if len(hex) != 8 {
		return 0, 0, 0, 0, fmt.Errorf("invalid rgba colour (%s)", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid rgba colour (%s): %w", s, err)
	}

	return uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v), nil
}

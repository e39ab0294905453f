package jsoncodec

import (
	"encoding/json"
	"fmt"

	"github.com/aeptools/aep/internal/model"
)

// Encode renders project as the JSON dialect, indented for readability.
// Absent keyframe tracks are omitted entirely rather than emitted as
// null or an empty array, and textures/compositions are written in the
// project's own asset order rather than encoding/json's default
// alphabetical map-key order.
func Encode(project *model.Project) ([]byte, error) {
	doc := document{
		Textures:     make(orderedMap[textureDoc], 0, len(project.Textures)),
		Compositions: make(orderedMap[compositionDoc], 0, len(project.Compositions)),
	}

	for _, t := range project.Textures {
		doc.Textures = append(doc.Textures, orderedEntry[textureDoc]{
			Key:   t.Name,
			Value: textureDoc{Width: ptr(int(t.Width)), Height: ptr(int(t.Height))},
		})
	}

	for _, c := range project.Compositions {
		layers := make([]layerDoc, 0, len(c.Layers))
		for _, l := range c.Layers {
			ld, err := encodeLayer(l)
			if err != nil {
				return nil, fmt.Errorf("composition %q: %w", c.Name, err)
			}
			layers = append(layers, ld)
		}
		doc.Compositions = append(doc.Compositions, orderedEntry[compositionDoc]{
			Key:   c.Name,
			Value: compositionDoc{Width: ptr(int(c.Width)), Height: ptr(int(c.Height)), Layers: layers},
		})
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return out, nil
}

func encodeLayer(l model.Layer) (layerDoc, error) {
	typeName, ok := layerTypeNames[l.Type]
	if !ok {
		return layerDoc{}, fmt.Errorf("layer %q has unrecognized type %d", l.Name, l.Type)
	}
	blendName, ok := blendModeNames[l.BlendMode]
	if !ok {
		return layerDoc{}, fmt.Errorf("layer %q has unrecognized blend mode %d", l.Name, l.BlendMode)
	}

	ld := layerDoc{
		Name:      ptr(l.Name),
		Type:      ptr(typeName),
		BlendMode: ptr(blendName),
	}

	if l.Timeline != nil {
		ld.TimelineStart = ptr(int(l.Timeline.Start))
		ld.TimelineUnknown1 = ptr(int(l.Timeline.Unknown1))
		ld.TimelineDuration = ptr(int(l.Timeline.Duration))
		ld.TimelineUnknown2 = ptr(int(l.Timeline.Unknown2))
	}

	if len(l.PositionKeyframes) > 0 {
		ld.PositionKeyframes = make([]positionKeyframeDoc, len(l.PositionKeyframes))
		for i, k := range l.PositionKeyframes {
			ld.PositionKeyframes[i] = positionKeyframeDoc{Frame: ptr(int(k.Frame)), X: ptr(k.X), Y: ptr(k.Y), Z: ptr(k.Z)}
		}
	}
	if len(l.AnchorPointKeyframes) > 0 {
		ld.AnchorPointKeyframes = make([]anchorPointKeyframeDoc, len(l.AnchorPointKeyframes))
		for i, k := range l.AnchorPointKeyframes {
			ld.AnchorPointKeyframes[i] = anchorPointKeyframeDoc{Frame: ptr(int(k.Frame)), X: ptr(k.X), Y: ptr(k.Y), Z: ptr(k.Z)}
		}
	}
	if len(l.ColourKeyframes) > 0 {
		ld.ColourKeyframes = make([]colourKeyframeDoc, len(l.ColourKeyframes))
		for i, k := range l.ColourKeyframes {
			ld.ColourKeyframes[i] = colourKeyframeDoc{Frame: ptr(int(k.Frame)), RGBA: ptr(formatRGBAHex(k.R, k.G, k.B, k.A))}
		}
	}
	if len(l.ScaleKeyframes) > 0 {
		ld.ScaleKeyframes = make([]scaleKeyframeDoc, len(l.ScaleKeyframes))
		for i, k := range l.ScaleKeyframes {
			ld.ScaleKeyframes[i] = scaleKeyframeDoc{Frame: ptr(int(k.Frame)), X: ptr(k.X), Y: ptr(k.Y)}
		}
	}
	if len(l.AlphaKeyframes) > 0 {
		ld.AlphaKeyframes = make([]alphaKeyframeDoc, len(l.AlphaKeyframes))
		for i, k := range l.AlphaKeyframes {
			ld.AlphaKeyframes[i] = alphaKeyframeDoc{Frame: ptr(int(k.Frame)), Value: ptr(k.Value)}
		}
	}
	if len(l.RotationXKeyframes) > 0 {
		ld.RotationXKeyframes = encodeRotationKeyframes(l.RotationXKeyframes)
	}
	if len(l.RotationYKeyframes) > 0 {
		ld.RotationYKeyframes = encodeRotationKeyframes(l.RotationYKeyframes)
	}
	if len(l.RotationZKeyframes) > 0 {
		ld.RotationZKeyframes = encodeRotationKeyframes(l.RotationZKeyframes)
	}
	if len(l.SizeKeyframes) > 0 {
		ld.SizeKeyframes = make([]sizeKeyframeDoc, len(l.SizeKeyframes))
		for i, k := range l.SizeKeyframes {
			ld.SizeKeyframes[i] = sizeKeyframeDoc{Frame: ptr(int(k.Frame)), Width: ptr(int(k.Width)), Height: ptr(int(k.Height))}
		}
	}
	if len(l.Markers) > 0 {
		ld.Markers = make([]markerDoc, len(l.Markers))
		for i, k := range l.Markers {
			ld.Markers[i] = markerDoc{Frame: ptr(int(k.Frame)), Unknown: ptr(int64(k.Unknown)), Name: ptr(k.Name)}
		}
	}

	return ld, nil
}

func encodeRotationKeyframes(keyframes []model.RotationKeyframe) []rotationKeyframeDoc {
	out := make([]rotationKeyframeDoc, len(keyframes))
	for i, k := range keyframes {
		out[i] = rotationKeyframeDoc{Frame: ptr(int(k.Frame)), Rotation: ptr(k.Degrees)}
	}
	return out
}

func formatRGBAHex(r, g, b, a uint8) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", r, g, b, a)
}

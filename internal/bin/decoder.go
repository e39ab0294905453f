package bin

import (
	"fmt"

	"github.com/aeptools/aep/internal/model"
	"github.com/pkg/errors"
)

const (
	assetTypeTexture     = 0
	assetTypeComposition = 1
)

// Decode parses a complete binary AEP project out of data, an
// in-memory copy of the whole file, under the given architecture.
//
// The asset table is walked from offset zero until a 16-byte NUL
// sentinel is reached; each asset's layers (if a composition), each
// layer's timeline and keyframe tracks, and every string are resolved
// by following their pointers. Every fixed-size or sentinel invariant
// violation is fatal — there is no attempt to resynchronize past a
// corrupt record.
func Decode(data []byte, arch Architecture) (*model.Project, error) {
	r := NewReader(data, arch)

	var textures []model.Texture
	var compositions []model.Composition

	terminator := make([]byte, AssetTerminatorSize)
	for !bytesEqual(r.Peek(AssetTerminatorSize), terminator) {
		texture, composition, err := decodeAsset(r, arch)
		if err != nil {
			return nil, err
		}
		if texture != nil {
			textures = append(textures, *texture)
		} else {
			compositions = append(compositions, *composition)
		}
	}

	project, err := model.NewProject(textures, compositions)
	if err != nil {
		return nil, err
	}
	return project, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func decodeAsset(r *Reader, arch Architecture) (*model.Texture, *model.Composition, error) {
	start := r.Tell()

	var size int
	var assetType uint16
	var name string
	var width, height uint16
	var numLayers, layersPointer int
	var err error

	if arch == X86 {
		var sizeU16 uint16
		if sizeU16, err = r.ReadU16(); err != nil {
			return nil, nil, err
		}
		size = int(sizeU16)
		if assetType, err = r.ReadU16(); err != nil {
			return nil, nil, err
		}
		if name, err = r.ReadString(); err != nil {
			return nil, nil, err
		}
		if width, err = r.ReadU16(); err != nil {
			return nil, nil, err
		}
		if height, err = r.ReadU16(); err != nil {
			return nil, nil, err
		}
		if numLayers, err = r.ReadCount(); err != nil {
			return nil, nil, err
		}
		if layersPointer, err = r.ReadPointer(); err != nil {
			return nil, nil, err
		}
	} else {
		if name, err = r.ReadString(); err != nil {
			return nil, nil, err
		}
		var sizeU16 uint16
		if sizeU16, err = r.ReadU16(); err != nil {
			return nil, nil, err
		}
		size = int(sizeU16)
		if assetType, err = r.ReadU16(); err != nil {
			return nil, nil, err
		}
		if width, err = r.ReadU16(); err != nil {
			return nil, nil, err
		}
		if height, err = r.ReadU16(); err != nil {
			return nil, nil, err
		}
		if layersPointer, err = r.ReadPointer(); err != nil {
			return nil, nil, err
		}
		if numLayers, err = r.ReadCount(); err != nil {
			return nil, nil, err
		}
	}

	if size != AssetSize[arch] {
		return nil, nil, fmt.Errorf("asset %q not %d bytes (%d)", name, AssetSize[arch], size)
	}

	var texture *model.Texture
	var composition *model.Composition

	switch assetType {
	case assetTypeTexture:
		if numLayers != 0 || layersPointer != 0 {
			return nil, nil, fmt.Errorf("texture %q has non-zero layers (%d at 0x%x)", name, numLayers, layersPointer)
		}
		texture = &model.Texture{Name: name, Width: width, Height: height}
	case assetTypeComposition:
		if layersPointer == 0 {
			return nil, nil, fmt.Errorf("composition %q has null layers pointer", name)
		}

		layers := make([]model.Layer, 0, numLayers)
		r.Seek(layersPointer)
		for i := 0; i < numLayers; i++ {
			layer, err := decodeLayer(r, arch)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "composition %q layer %d", name, i)
			}
			layers = append(layers, *layer)
		}
		composition = &model.Composition{Name: name, Width: width, Height: height, Layers: layers}
	default:
		return nil, nil, fmt.Errorf("asset %q has unrecognized type %d", name, assetType)
	}

	// reset the cursor for array reading, regardless of how far
	// decoding the asset's own sub-structures moved it.
	r.Seek(start + size)
	return texture, composition, nil
}

func decodeLayer(r *Reader, arch Architecture) (*model.Layer, error) {
	start := r.Tell()

	sizeU16, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	size := int(sizeU16)

	typeBlend, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	layerType, ok := layerTypeCodes[(typeBlend>>4)&0xf]
	if !ok {
		return nil, fmt.Errorf("layer has unrecognized type nibble 0x%x", (typeBlend>>4)&0xf)
	}
	blendMode, ok := blendModeCodes[typeBlend&0xf]
	if !ok {
		return nil, fmt.Errorf("layer has unrecognized blend nibble 0x%x", typeBlend&0xf)
	}

	pad, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	if pad != 0 {
		return nil, fmt.Errorf("layer padding byte not zero (0x%x)", pad)
	}
	if arch == X64 {
		pad32, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		if pad32 != 0 {
			return nil, fmt.Errorf("layer x64 padding not zero (0x%x)", pad32)
		}
	}

	name, err := r.ReadString()
	if err != nil {
		return nil, err
	}

	timelinePointer, err := r.ReadPointer()
	if err != nil {
		return nil, err
	}
	positionPointer, err := r.ReadPointer()
	if err != nil {
		return nil, err
	}
	anchorPointPointer, err := r.ReadPointer()
	if err != nil {
		return nil, err
	}
	colourPointer, err := r.ReadPointer()
	if err != nil {
		return nil, err
	}
	scalePointer, err := r.ReadPointer()
	if err != nil {
		return nil, err
	}
	alphaPointer, err := r.ReadPointer()
	if err != nil {
		return nil, err
	}
	unknownPointer, err := r.ReadPointer()
	if err != nil {
		return nil, err
	}
	rotationXPointer, err := r.ReadPointer()
	if err != nil {
		return nil, err
	}
	rotationYPointer, err := r.ReadPointer()
	if err != nil {
		return nil, err
	}
	rotationZPointer, err := r.ReadPointer()
	if err != nil {
		return nil, err
	}
	sizePointer, err := r.ReadPointer()
	if err != nil {
		return nil, err
	}
	markerPointer, err := r.ReadPointer()
	if err != nil {
		return nil, err
	}

	if size != LayerSize[arch] {
		return nil, fmt.Errorf("layer %q not %d bytes (%d)", name, LayerSize[arch], size)
	}

	var timeline *model.Timeline
	if timelinePointer != 0 {
		timeline, err = decodeTimeline(r, arch, name, timelinePointer)
		if err != nil {
			return nil, err
		}
	}

	positionKeyframes, err := decodePositionKeyframes(r, arch, positionPointer)
	if err != nil {
		return nil, errors.Wrapf(err, "layer %q position keyframes", name)
	}
	anchorPointKeyframes, err := decodeAnchorPointKeyframes(r, arch, anchorPointPointer)
	if err != nil {
		return nil, errors.Wrapf(err, "layer %q anchor point keyframes", name)
	}
	colourKeyframes, err := decodeColourKeyframes(r, colourPointer)
	if err != nil {
		return nil, errors.Wrapf(err, "layer %q colour keyframes", name)
	}
	scaleKeyframes, err := decodeScaleKeyframes(r, arch, scalePointer)
	if err != nil {
		return nil, errors.Wrapf(err, "layer %q scale keyframes", name)
	}
	alphaKeyframes, err := decodeAlphaKeyframes(r, arch, alphaPointer)
	if err != nil {
		return nil, errors.Wrapf(err, "layer %q alpha keyframes", name)
	}

	if unknownPointer != 0 {
		return nil, fmt.Errorf("layer %q has unexpected unknown keyframes at 0x%x", name, unknownPointer)
	}

	rotationXKeyframes, err := decodeRotationKeyframes(r, arch, rotationXPointer)
	if err != nil {
		return nil, errors.Wrapf(err, "layer %q rotation x keyframes", name)
	}
	rotationYKeyframes, err := decodeRotationKeyframes(r, arch, rotationYPointer)
	if err != nil {
		return nil, errors.Wrapf(err, "layer %q rotation y keyframes", name)
	}
	rotationZKeyframes, err := decodeRotationKeyframes(r, arch, rotationZPointer)
	if err != nil {
		return nil, errors.Wrapf(err, "layer %q rotation z keyframes", name)
	}
	sizeKeyframes, err := decodeSizeKeyframes(r, arch, sizePointer)
	if err != nil {
		return nil, errors.Wrapf(err, "layer %q size keyframes", name)
	}
	markers, err := decodeMarkerKeyframes(r, arch, markerPointer)
	if err != nil {
		return nil, errors.Wrapf(err, "layer %q markers", name)
	}

	r.Seek(start + size)

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

func decodeTimeline(r *Reader, arch Architecture, layerName string, pointer int) (*model.Timeline, error) {
	r.Seek(pointer)

	sizeU16, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	size := int(sizeU16)
	start, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	unknown1, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	duration, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	unknown2, err := r.ReadU32()
	if err != nil {
		return nil, err
	}

	if size != LayerTimelineSize {
		return nil, fmt.Errorf("layer %q timeline not %d bytes (%d)", layerName, LayerTimelineSize, size)
	}
	if unknown2 != model.TimelineUnknown2Value {
		return nil, fmt.Errorf("layer %q timeline unknown2 not %d (%d)", layerName, model.TimelineUnknown2Value, unknown2)
	}

	return &model.Timeline{Start: start, Unknown1: unknown1, Duration: duration, Unknown2: unknown2}, nil
}

// keyframeListHeader reads the {size, frame} prefix shared by every
// keyframe-shaped record and returns it with the record's start offset.
// It does not validate either value; callers check the size and stop
// at the 0xFFFF sentinel frame.
func keyframeListHeader(r *Reader) (itemStart, size, frame int, err error) {
	itemStart = r.Tell()
	sizeU16, err := r.ReadU16()
	if err != nil {
		return 0, 0, 0, err
	}
	frameU16, err := r.ReadU16()
	if err != nil {
		return 0, 0, 0, err
	}
	return itemStart, int(sizeU16), int(frameU16), nil
}

func decodePositionKeyframes(r *Reader, arch Architecture, pointer int) ([]model.PositionKeyframe, error) {
	if pointer == 0 {
		return nil, nil
	}
	r.Seek(pointer)

	var out []model.PositionKeyframe
	for {
		itemStart, size, frame, err := keyframeListHeader(r)
		if err != nil {
			return nil, err
		}
		if frame == 0xffff {
			break
		}
		if size != PositionKeyframeSize[arch] {
			return nil, fmt.Errorf("position keyframe not %d bytes (%d)", PositionKeyframeSize[arch], size)
		}
		x, err := r.ReadF32()
		if err != nil {
			return nil, err
		}
		y, err := r.ReadF32()
		if err != nil {
			return nil, err
		}
		z, err := r.ReadF32()
		if err != nil {
			return nil, err
		}
		out = append(out, model.PositionKeyframe{Frame: uint16(frame), X: x, Y: y, Z: z})
		r.Seek(itemStart + size)
	}
	return out, nil
}

func decodeAnchorPointKeyframes(r *Reader, arch Architecture, pointer int) ([]model.AnchorPointKeyframe, error) {
	if pointer == 0 {
		return nil, nil
	}
	r.Seek(pointer)

	var out []model.AnchorPointKeyframe
	for {
		itemStart, size, frame, err := keyframeListHeader(r)
		if err != nil {
			return nil, err
		}
		if frame == 0xffff {
			break
		}
		if size != AnchorPointKeyframeSize[arch] {
			return nil, fmt.Errorf("anchor point keyframe not %d bytes (%d)", AnchorPointKeyframeSize[arch], size)
		}
		x, err := r.ReadF32()
		if err != nil {
			return nil, err
		}
		y, err := r.ReadF32()
		if err != nil {
			return nil, err
		}
		z, err := r.ReadF32()
		if err != nil {
			return nil, err
		}
		// re-normalize from 0-100 to 0-1, for consistency
		out = append(out, model.AnchorPointKeyframe{Frame: uint16(frame), X: x / 100, Y: y / 100, Z: z / 100})
		r.Seek(itemStart + size)
	}
	return out, nil
}

func decodeColourKeyframes(r *Reader, pointer int) ([]model.ColourKeyframe, error) {
	if pointer == 0 {
		return nil, nil
	}
	r.Seek(pointer)

	var out []model.ColourKeyframe
	for {
		itemStart, size, frame, err := keyframeListHeader(r)
		if err != nil {
			return nil, err
		}
		if frame == 0xffff {
			break
		}

		// ColourKeyframeSize only accounts for the rgba-u8 form;
		// decoding must also accept the rgba-f32 form.
		var kf model.ColourKeyframe
		kf.Frame = uint16(frame)
		switch size {
		case 8:
			rr, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			gg, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			bb, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			aa, err := r.ReadU8()
			if err != nil {
				return nil, err
			}
			kf.R, kf.G, kf.B, kf.A = rr, gg, bb, aa
		case 20:
			rf, err := r.ReadF32()
			if err != nil {
				return nil, err
			}
			gf, err := r.ReadF32()
			if err != nil {
				return nil, err
			}
			bf, err := r.ReadF32()
			if err != nil {
				return nil, err
			}
			af, err := r.ReadF32()
			if err != nil {
				return nil, err
			}
			// re-normalize from 0-1 to 0-255, for consistency
			kf.R = uint8(rf * 255)
			kf.G = uint8(gf * 255)
			kf.B = uint8(bf * 255)
			kf.A = uint8(af * 255)
		default:
			return nil, fmt.Errorf("colour keyframe not 8 or 20 bytes (%d)", size)
		}

		out = append(out, kf)
		r.Seek(itemStart + size)
	}
	return out, nil
}

func decodeScaleKeyframes(r *Reader, arch Architecture, pointer int) ([]model.ScaleKeyframe, error) {
	if pointer == 0 {
		return nil, nil
	}
	r.Seek(pointer)

	var out []model.ScaleKeyframe
	for {
		itemStart, size, frame, err := keyframeListHeader(r)
		if err != nil {
			return nil, err
		}
		if frame == 0xffff {
			break
		}
		if size != ScaleKeyframeSize[arch] {
			return nil, fmt.Errorf("scale keyframe not %d bytes (%d)", ScaleKeyframeSize[arch], size)
		}
		x, err := r.ReadF32()
		if err != nil {
			return nil, err
		}
		y, err := r.ReadF32()
		if err != nil {
			return nil, err
		}
		out = append(out, model.ScaleKeyframe{Frame: uint16(frame), X: x / 100, Y: y / 100})
		r.Seek(itemStart + size)
	}
	return out, nil
}

func decodeAlphaKeyframes(r *Reader, arch Architecture, pointer int) ([]model.AlphaKeyframe, error) {
	if pointer == 0 {
		return nil, nil
	}
	r.Seek(pointer)

	var out []model.AlphaKeyframe
	for {
		itemStart, size, frame, err := keyframeListHeader(r)
		if err != nil {
			return nil, err
		}
		if frame == 0xffff {
			break
		}
		if size != AlphaKeyframeSize[arch] {
			return nil, fmt.Errorf("alpha keyframe not %d bytes (%d)", AlphaKeyframeSize[arch], size)
		}
		value, err := r.ReadF32()
		if err != nil {
			return nil, err
		}
		out = append(out, model.AlphaKeyframe{Frame: uint16(frame), Value: value / 100})
		r.Seek(itemStart + size)
	}
	return out, nil
}

func decodeRotationKeyframes(r *Reader, arch Architecture, pointer int) ([]model.RotationKeyframe, error) {
	if pointer == 0 {
		return nil, nil
	}
	r.Seek(pointer)

	var out []model.RotationKeyframe
	for {
		itemStart, size, frame, err := keyframeListHeader(r)
		if err != nil {
			return nil, err
		}
		if frame == 0xffff {
			break
		}
		if size != RotationKeyframeSize[arch] {
			return nil, fmt.Errorf("rotation keyframe not %d bytes (%d)", RotationKeyframeSize[arch], size)
		}
		degrees, err := r.ReadF32()
		if err != nil {
			return nil, err
		}
		out = append(out, model.RotationKeyframe{Frame: uint16(frame), Degrees: degrees})
		r.Seek(itemStart + size)
	}
	return out, nil
}

func decodeSizeKeyframes(r *Reader, arch Architecture, pointer int) ([]model.SizeKeyframe, error) {
	if pointer == 0 {
		return nil, nil
	}
	r.Seek(pointer)

	var out []model.SizeKeyframe
	for {
		itemStart, size, frame, err := keyframeListHeader(r)
		if err != nil {
			return nil, err
		}
		if frame == 0xffff {
			break
		}
		if size != SizeKeyframeSize[arch] {
			return nil, fmt.Errorf("size keyframe not %d bytes (%d)", SizeKeyframeSize[arch], size)
		}
		width, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		height, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		out = append(out, model.SizeKeyframe{Frame: uint16(frame), Width: width, Height: height})
		r.Seek(itemStart + size)
	}
	return out, nil
}

func decodeMarkerKeyframes(r *Reader, arch Architecture, pointer int) ([]model.Marker, error) {
	if pointer == 0 {
		return nil, nil
	}
	r.Seek(pointer)

	var out []model.Marker
	for {
		itemStart, size, frame, err := keyframeListHeader(r)
		if err != nil {
			return nil, err
		}
		if frame == 0xffff {
			break
		}
		if size != MarkerKeyframeSize[arch] {
			// the observed size is reported here, not a boolean
			// comparison.
			return nil, fmt.Errorf("marker keyframe not %d bytes (%d)", MarkerKeyframeSize[arch], size)
		}
		unknown, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		name, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		out = append(out, model.Marker{Frame: uint16(frame), Unknown: unknown, Name: name})
		r.Seek(itemStart + size)
	}
	return out, nil
}

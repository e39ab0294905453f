package bin

import (
	"fmt"

	"github.com/aeptools/aep/internal/model"
)

// sectionOffsets holds the four sections' sizes and their resulting
// absolute base offsets within the final file, computed in phase 1 so
// that phase 2 can embed absolute pointers as it writes.
type sectionOffsets struct {
	assetsSize, layersSize, keyframesSize, stringsSize int
	assets, layers, keyframes, strings                 int
}

func newSectionOffsets(assetsSize, layersSize, keyframesSize, stringsSize int) sectionOffsets {
	s := sectionOffsets{assetsSize: assetsSize, layersSize: layersSize, keyframesSize: keyframesSize, stringsSize: stringsSize}
	s.assets = 0
	s.layers = s.assets + assetsSize
	s.keyframes = s.layers + layersSize
	s.strings = s.keyframes + keyframesSize
	return s
}

// Encode serializes project into the binary wire format for the given
// architecture and returns the complete file contents.
//
// Encoding runs in two passes. Phase 1 walks the project purely to
// compute each section's exact byte size, since every pointer embedded
// in the stream is an absolute file offset and so every section's base
// offset must be known before anything that references it is written.
// Phase 2 then writes four independent section buffers — assets,
// layers, keyframes, strings — with a single deduplicating string
// table shared across all of them, and concatenates the buffers in
// section order.
func Encode(project *model.Project, arch Architecture) ([]byte, error) {
	offsets := computeSectionOffsets(project, arch)

	assetsWriter := NewWriter(arch)
	layersWriter := NewWriter(arch)
	keyframesWriter := NewWriter(arch)
	stringsWriter := NewStringWriter(arch)

	for _, texture := range project.Textures {
		encodeTexture(texture, offsets, arch, assetsWriter, stringsWriter)
	}
	for _, composition := range project.Compositions {
		encodeComposition(composition, offsets, arch, assetsWriter, layersWriter, keyframesWriter, stringsWriter)
	}

	assetsWriter.WriteTerminator(AssetTerminatorSize)
	assetsWriter.WritePointer(offsets.layers)
	assetsWriter.WriteTerminator(LayersSectionPointerBlockSize - PointerSize[arch])

	if assetsWriter.Tell() != offsets.assetsSize {
		return nil, fmt.Errorf("internal error: expected to write %d assets section bytes, wrote %d", offsets.assetsSize, assetsWriter.Tell())
	}
	if layersWriter.Tell() != offsets.layersSize {
		return nil, fmt.Errorf("internal error: expected to write %d layers section bytes, wrote %d", offsets.layersSize, layersWriter.Tell())
	}
	if keyframesWriter.Tell() != offsets.keyframesSize {
		return nil, fmt.Errorf("internal error: expected to write %d keyframes section bytes, wrote %d", offsets.keyframesSize, keyframesWriter.Tell())
	}
	if stringsWriter.Tell() != offsets.stringsSize {
		return nil, fmt.Errorf("internal error: expected to write %d strings section bytes, wrote %d", offsets.stringsSize, stringsWriter.Tell())
	}

	out := make([]byte, 0, offsets.assetsSize+offsets.layersSize+offsets.keyframesSize+offsets.stringsSize)
	out = append(out, assetsWriter.Bytes()...)
	out = append(out, layersWriter.Bytes()...)
	out = append(out, keyframesWriter.Bytes()...)
	out = append(out, stringsWriter.Bytes()...)
	return out, nil
}

func computeSectionOffsets(project *model.Project, arch Architecture) sectionOffsets {
	var assetsSize, layersSize, keyframesSize, stringsSize int
	seenStrings := make(map[string]struct{})

	accountString := func(s string) {
		if _, ok := seenStrings[s]; ok {
			return
		}
		seenStrings[s] = struct{}{}
		stringsSize += stringEncodedSize(s)
	}

	for _, texture := range project.Textures {
		assetsSize += AssetSize[arch]
		accountString(texture.Name)
	}

	for _, composition := range project.Compositions {
		assetsSize += AssetSize[arch]
		accountString(composition.Name)

		for _, layer := range composition.Layers {
			layersSize += LayerSize[arch]
			accountString(layer.Name)

			if layer.HasTimeline() {
				keyframesSize += LayerTimelineSize
			}

			// +1 per track for the terminator record.
			if layer.PositionKeyframes != nil {
				keyframesSize += PositionKeyframeSize[arch] * (len(layer.PositionKeyframes) + 1)
			}
			if layer.AnchorPointKeyframes != nil {
				keyframesSize += AnchorPointKeyframeSize[arch] * (len(layer.AnchorPointKeyframes) + 1)
			}
			if layer.ColourKeyframes != nil {
				keyframesSize += ColourKeyframeSize[arch] * (len(layer.ColourKeyframes) + 1)
			}
			if layer.ScaleKeyframes != nil {
				keyframesSize += ScaleKeyframeSize[arch] * (len(layer.ScaleKeyframes) + 1)
			}
			if layer.AlphaKeyframes != nil {
				keyframesSize += AlphaKeyframeSize[arch] * (len(layer.AlphaKeyframes) + 1)
			}
			if layer.RotationXKeyframes != nil {
				keyframesSize += RotationKeyframeSize[arch] * (len(layer.RotationXKeyframes) + 1)
			}
			if layer.RotationYKeyframes != nil {
				keyframesSize += RotationKeyframeSize[arch] * (len(layer.RotationYKeyframes) + 1)
			}
			if layer.RotationZKeyframes != nil {
				keyframesSize += RotationKeyframeSize[arch] * (len(layer.RotationZKeyframes) + 1)
			}
			if layer.SizeKeyframes != nil {
				keyframesSize += SizeKeyframeSize[arch] * (len(layer.SizeKeyframes) + 1)
			}
			if layer.Markers != nil {
				keyframesSize += MarkerKeyframeSize[arch] * (len(layer.Markers) + 1)
				for _, marker := range layer.Markers {
					accountString(marker.Name)
				}
			}
		}
	}

	assetsSize += AssetTerminatorSize
	assetsSize += LayersSectionPointerBlockSize

	return newSectionOffsets(assetsSize, layersSize, keyframesSize, stringsSize)
}

func stringEncodedSize(s string) int {
	return len(s) + 1 // bytes + NUL terminator
}

func encodeTexture(texture model.Texture, offsets sectionOffsets, arch Architecture, assetsWriter *Writer, stringsWriter *StringWriter) {
	encodeAsset(texture.Name, assetTypeTexture, texture.Width, texture.Height, 0, 0, offsets, arch, assetsWriter, stringsWriter)
}

func encodeComposition(composition model.Composition, offsets sectionOffsets, arch Architecture, assetsWriter, layersWriter, keyframesWriter *Writer, stringsWriter *StringWriter) {
	layersPointer := offsets.layers + layersWriter.Tell()
	encodeAsset(composition.Name, assetTypeComposition, composition.Width, composition.Height, len(composition.Layers), layersPointer, offsets, arch, assetsWriter, stringsWriter)

	for _, layer := range composition.Layers {
		encodeLayer(layer, offsets, arch, layersWriter, keyframesWriter, stringsWriter)
	}
}

func encodeAsset(name string, assetType int, width, height uint16, numLayers, layersPointer int, offsets sectionOffsets, arch Architecture, assetsWriter *Writer, stringsWriter *StringWriter) {
	namePointer := offsets.strings + stringsWriter.WriteString(name)

	if arch == X86 {
		assetsWriter.WriteU16(uint16(AssetSize[arch]))
		assetsWriter.WriteU16(uint16(assetType))
		assetsWriter.WritePointer(namePointer)
		assetsWriter.WriteU16(width)
		assetsWriter.WriteU16(height)
		assetsWriter.WriteCount(numLayers)
		assetsWriter.WritePointer(layersPointer)
	} else {
		assetsWriter.WritePointer(namePointer)
		assetsWriter.WriteU16(uint16(AssetSize[arch]))
		assetsWriter.WriteU16(uint16(assetType))
		assetsWriter.WriteU16(width)
		assetsWriter.WriteU16(height)
		assetsWriter.WritePointer(layersPointer)
		assetsWriter.WriteCount(numLayers)
	}
}

func encodeLayer(layer model.Layer, offsets sectionOffsets, arch Architecture, layersWriter, keyframesWriter *Writer, stringsWriter *StringWriter) {
	typeNibble := layerTypeNibbles[layer.Type]
	blendNibble := blendModeNibbles[layer.BlendMode]

	layersWriter.WriteU16(uint16(LayerSize[arch]))
	layersWriter.WriteU8((typeNibble << 4) | blendNibble)
	layersWriter.WriteU8(0)
	if arch == X64 {
		layersWriter.WriteU32(0)
	}

	layersWriter.WritePointer(offsets.strings + stringsWriter.WriteString(layer.Name))
	layersWriter.WritePointer(encodeTimeline(layer, offsets, keyframesWriter))
	layersWriter.WritePointer(encodePositionKeyframes(layer.PositionKeyframes, offsets, arch, keyframesWriter))
	layersWriter.WritePointer(encodeAnchorPointKeyframes(layer.AnchorPointKeyframes, offsets, arch, keyframesWriter))
	layersWriter.WritePointer(encodeColourKeyframes(layer.ColourKeyframes, offsets, arch, keyframesWriter))
	layersWriter.WritePointer(encodeScaleKeyframes(layer.ScaleKeyframes, offsets, arch, keyframesWriter))
	layersWriter.WritePointer(encodeAlphaKeyframes(layer.AlphaKeyframes, offsets, arch, keyframesWriter))
	layersWriter.WritePointer(0) // reserved/unknown slot
	layersWriter.WritePointer(encodeRotationKeyframes(layer.RotationXKeyframes, offsets, arch, keyframesWriter))
	layersWriter.WritePointer(encodeRotationKeyframes(layer.RotationYKeyframes, offsets, arch, keyframesWriter))
	layersWriter.WritePointer(encodeRotationKeyframes(layer.RotationZKeyframes, offsets, arch, keyframesWriter))
	layersWriter.WritePointer(encodeSizeKeyframes(layer.SizeKeyframes, offsets, arch, keyframesWriter))
	layersWriter.WritePointer(encodeMarkerKeyframes(layer.Markers, offsets, arch, keyframesWriter, stringsWriter))
}

func encodeTimeline(layer model.Layer, offsets sectionOffsets, keyframesWriter *Writer) int {
	if !layer.HasTimeline() {
		return 0
	}

	pointer := offsets.keyframes + keyframesWriter.Tell()

	keyframesWriter.WriteU16(uint16(LayerTimelineSize))
	keyframesWriter.WriteU16(layer.Timeline.Start)
	keyframesWriter.WriteU16(layer.Timeline.Unknown1)
	keyframesWriter.WriteU16(layer.Timeline.Duration)
	keyframesWriter.WriteU32(layer.Timeline.Unknown2)

	return pointer
}

func writeKeyframeTerminator(keyframesWriter *Writer, size int) {
	keyframesWriter.WriteU16(uint16(size))
	keyframesWriter.WriteU16(0xffff)
	keyframesWriter.WriteTerminator(size - 4)
}

func encodePositionKeyframes(keyframes []model.PositionKeyframe, offsets sectionOffsets, arch Architecture, keyframesWriter *Writer) int {
	if keyframes == nil {
		return 0
	}
	pointer := offsets.keyframes + keyframesWriter.Tell()
	size := PositionKeyframeSize[arch]

	for _, kf := range keyframes {
		keyframesWriter.WriteU16(uint16(size))
		keyframesWriter.WriteU16(kf.Frame)
		keyframesWriter.WriteF32(kf.X)
		keyframesWriter.WriteF32(kf.Y)
		keyframesWriter.WriteF32(kf.Z)
	}
	writeKeyframeTerminator(keyframesWriter, size)
	return pointer
}

func encodeAnchorPointKeyframes(keyframes []model.AnchorPointKeyframe, offsets sectionOffsets, arch Architecture, keyframesWriter *Writer) int {
	if keyframes == nil {
		return 0
	}
	pointer := offsets.keyframes + keyframesWriter.Tell()
	size := AnchorPointKeyframeSize[arch]

	for _, kf := range keyframes {
		keyframesWriter.WriteU16(uint16(size))
		keyframesWriter.WriteU16(kf.Frame)
		keyframesWriter.WriteF32(kf.X * 100)
		keyframesWriter.WriteF32(kf.Y * 100)
		keyframesWriter.WriteF32(kf.Z * 100)
	}
	writeKeyframeTerminator(keyframesWriter, size)
	return pointer
}

func encodeColourKeyframes(keyframes []model.ColourKeyframe, offsets sectionOffsets, arch Architecture, keyframesWriter *Writer) int {
	if keyframes == nil {
		return 0
	}
	pointer := offsets.keyframes + keyframesWriter.Tell()
	size := ColourKeyframeSize[arch]

	for _, kf := range keyframes {
		keyframesWriter.WriteU16(uint16(size))
		keyframesWriter.WriteU16(kf.Frame)
		keyframesWriter.WriteU8(kf.R)
		keyframesWriter.WriteU8(kf.G)
		keyframesWriter.WriteU8(kf.B)
		keyframesWriter.WriteU8(kf.A)
	}
	writeKeyframeTerminator(keyframesWriter, size)
	return pointer
}

func encodeScaleKeyframes(keyframes []model.ScaleKeyframe, offsets sectionOffsets, arch Architecture, keyframesWriter *Writer) int {
	if keyframes == nil {
		return 0
	}
	pointer := offsets.keyframes + keyframesWriter.Tell()
	size := ScaleKeyframeSize[arch]

	for _, kf := range keyframes {
		keyframesWriter.WriteU16(uint16(size))
		keyframesWriter.WriteU16(kf.Frame)
		keyframesWriter.WriteF32(kf.X * 100)
		keyframesWriter.WriteF32(kf.Y * 100)
	}
	writeKeyframeTerminator(keyframesWriter, size)
	return pointer
}

func encodeAlphaKeyframes(keyframes []model.AlphaKeyframe, offsets sectionOffsets, arch Architecture, keyframesWriter *Writer) int {
	if keyframes == nil {
		return 0
	}
	pointer := offsets.keyframes + keyframesWriter.Tell()
	size := AlphaKeyframeSize[arch]

	for _, kf := range keyframes {
		keyframesWriter.WriteU16(uint16(size))
		keyframesWriter.WriteU16(kf.Frame)
		keyframesWriter.WriteF32(kf.Value * 100)
	}
	writeKeyframeTerminator(keyframesWriter, size)
	return pointer
}

func encodeRotationKeyframes(keyframes []model.RotationKeyframe, offsets sectionOffsets, arch Architecture, keyframesWriter *Writer) int {
	if keyframes == nil {
		return 0
	}
	pointer := offsets.keyframes + keyframesWriter.Tell()
	size := RotationKeyframeSize[arch]

	for _, kf := range keyframes {
		keyframesWriter.WriteU16(uint16(size))
		keyframesWriter.WriteU16(kf.Frame)
		keyframesWriter.WriteF32(kf.Degrees)
	}
	writeKeyframeTerminator(keyframesWriter, size)
	return pointer
}

func encodeSizeKeyframes(keyframes []model.SizeKeyframe, offsets sectionOffsets, arch Architecture, keyframesWriter *Writer) int {
	if keyframes == nil {
		return 0
	}
	pointer := offsets.keyframes + keyframesWriter.Tell()
	size := SizeKeyframeSize[arch]

	for _, kf := range keyframes {
		keyframesWriter.WriteU16(uint16(size))
		keyframesWriter.WriteU16(kf.Frame)
		keyframesWriter.WriteU16(kf.Width)
		keyframesWriter.WriteU16(kf.Height)
	}
	writeKeyframeTerminator(keyframesWriter, size)
	return pointer
}

func encodeMarkerKeyframes(markers []model.Marker, offsets sectionOffsets, arch Architecture, keyframesWriter *Writer, stringsWriter *StringWriter) int {
	if markers == nil {
		return 0
	}
	pointer := offsets.keyframes + keyframesWriter.Tell()
	size := MarkerKeyframeSize[arch]

	for _, marker := range markers {
		keyframesWriter.WriteU16(uint16(size))
		keyframesWriter.WriteU16(marker.Frame)
		keyframesWriter.WriteU32(marker.Unknown)
		keyframesWriter.WritePointer(offsets.strings + stringsWriter.WriteString(marker.Name))
	}
	writeKeyframeTerminator(keyframesWriter, size)
	return pointer
}

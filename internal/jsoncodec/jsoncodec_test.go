package jsoncodec

import (
	"strings"
	"testing"

	"github.com/aeptools/aep/internal/model"
	"github.com/stretchr/testify/require"
)

func sampleProject(t *testing.T) *model.Project {
	t.Helper()
	textures := []model.Texture{{Name: "bg", Width: 640, Height: 480}}
	layer := model.Layer{
		Name:      "L-bg",
		Type:      model.LayerTexture,
		BlendMode: model.BlendAdditive,
		Timeline:  &model.Timeline{Start: 1, Unknown1: 2, Duration: 30, Unknown2: model.TimelineUnknown2Value},
		PositionKeyframes: []model.PositionKeyframe{
			{Frame: 0, X: 1, Y: 2, Z: 3},
		},
		ColourKeyframes: []model.ColourKeyframe{
			{Frame: 0, R: 255, G: 128, B: 0, A: 255},
		},
		RotationXKeyframes: []model.RotationKeyframe{{Frame: 1, Degrees: 45}},
		Markers:            []model.Marker{{Frame: 0, Unknown: 3, Name: "start"}},
	}
	compositions := []model.Composition{{Name: "main", Width: 640, Height: 480, Layers: []model.Layer{layer}}}

	project, err := model.NewProject(textures, compositions)
	require.NoError(t, err)
	return project
}

func TestRoundTrip(t *testing.T) {
	project := sampleProject(t)

	data, err := Encode(project)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	require.Equal(t, project, decoded)
}

// Scenario: a project with multiple textures and compositions must
// round-trip with its asset order intact. A map-keyed JSON
// representation would instead reorder both on the way out
// (encoding/json sorts map keys) and on the way back in (Go map
// iteration order is randomized), so this is the regression case for
// that bug class.
func TestRoundTrip_PreservesAssetOrder(t *testing.T) {
	textures := []model.Texture{
		{Name: "zz-bg", Width: 640, Height: 480},
		{Name: "aa-fg", Width: 64, Height: 64},
	}
	compositions := []model.Composition{
		{Name: "zz-intro", Width: 640, Height: 480},
		{Name: "aa-main", Width: 320, Height: 240},
	}
	project, err := model.NewProject(textures, compositions)
	require.NoError(t, err)

	data, err := Encode(project)
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	require.Equal(t, project, decoded)
	require.Equal(t, []string{"zz-bg", "aa-fg"}, textureNames(decoded.Textures))
	require.Equal(t, []string{"zz-intro", "aa-main"}, compositionNames(decoded.Compositions))
}

func textureNames(ts []model.Texture) []string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.Name
	}
	return names
}

func compositionNames(cs []model.Composition) []string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = c.Name
	}
	return names
}

func TestEncode_OmitsAbsentTracks(t *testing.T) {
	project := sampleProject(t)

	data, err := Encode(project)
	require.NoError(t, err)

	body := string(data)
	require.Contains(t, body, `"position_keyframes"`)
	require.NotContains(t, body, `"scale_keyframes"`)
	require.NotContains(t, body, `"alpha_keyframes"`)
}

func TestEncode_ColourUsesLowercaseHexRGBA(t *testing.T) {
	project := sampleProject(t)

	data, err := Encode(project)
	require.NoError(t, err)
	require.Contains(t, string(data), `"rgba": "#ff8000ff"`)
}

// Scenario: an empty keyframe array supplied via JSON normalizes to an
// absent track, and re-encoding omits the field entirely.
func TestDecode_EmptyArrayNormalizesToAbsent(t *testing.T) {
	const doc = `{
		"textures": {},
		"compositions": {
			"c": {
				"width": 1,
				"height": 1,
				"layers": [
					{
						"name": "plain",
						"type": "colour",
						"blend_mode": "normal",
						"timeline_start": null,
						"timeline_unknown1": null,
						"timeline_duration": null,
						"timeline_unknown2": null,
						"position_keyframes": []
					}
				]
			}
		}
	}`

	project, err := Decode([]byte(doc))
	require.NoError(t, err)
	require.Nil(t, project.Compositions[0].Layers[0].PositionKeyframes)

	reEncoded, err := Encode(project)
	require.NoError(t, err)
	require.NotContains(t, string(reEncoded), "position_keyframes")
}

func TestDecode_InvalidRGBAHex(t *testing.T) {
	const doc = `{
		"textures": {},
		"compositions": {
			"c": {
				"width": 1,
				"height": 1,
				"layers": [
					{
						"name": "plain",
						"type": "colour",
						"blend_mode": "normal",
						"timeline_start": null,
						"timeline_unknown1": null,
						"timeline_duration": null,
						"timeline_unknown2": null,
						"colour_keyframes": [{"frame": 0, "rgba": "not-a-colour"}]
					}
				]
			}
		}
	}`

	_, err := Decode([]byte(doc))
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "invalid rgba colour"))
}

func TestDecode_UnresolvedReferenceFails(t *testing.T) {
	const doc = `{
		"textures": {},
		"compositions": {
			"c": {
				"width": 1,
				"height": 1,
				"layers": [
					{
						"name": "L-missing",
						"type": "texture",
						"blend_mode": "normal",
						"timeline_start": null,
						"timeline_unknown1": null,
						"timeline_duration": null,
						"timeline_unknown2": null
					}
				]
			}
		}
	}`

	_, err := Decode([]byte(doc))
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown asset")
}

func TestDecode_BoundsCheckOnWidth(t *testing.T) {
	const doc = `{"textures": {"a": {"width": 70000, "height": 1}}, "compositions": {}}`

	_, err := Decode([]byte(doc))
	require.Error(t, err)
	require.Contains(t, err.Error(), "outside of bounds")
}

// Scenario: a layer missing its required "name" field must fail
// decoding instead of silently defaulting to an empty name.
func TestDecode_MissingLayerNameFails(t *testing.T) {
	const doc = `{
		"textures": {},
		"compositions": {
			"c": {
				"width": 1,
				"height": 1,
				"layers": [
					{
						"type": "colour",
						"blend_mode": "normal",
						"timeline_start": null,
						"timeline_unknown1": null,
						"timeline_duration": null,
						"timeline_unknown2": null
					}
				]
			}
		}
	}`

	_, err := Decode([]byte(doc))
	require.Error(t, err)
	require.Contains(t, err.Error(), `missing required field "name"`)
}

// Scenario: a position keyframe missing its required "x" field must
// fail decoding instead of silently defaulting x to 0.
func TestDecode_MissingKeyframeFieldFails(t *testing.T) {
	const doc = `{
		"textures": {},
		"compositions": {
			"c": {
				"width": 1,
				"height": 1,
				"layers": [
					{
						"name": "plain",
						"type": "colour",
						"blend_mode": "normal",
						"timeline_start": null,
						"timeline_unknown1": null,
						"timeline_duration": null,
						"timeline_unknown2": null,
						"position_keyframes": [{"frame": 0, "y": 2, "z": 3}]
					}
				]
			}
		}
	}`

	_, err := Decode([]byte(doc))
	require.Error(t, err)
	require.Contains(t, err.Error(), `missing required field "position_keyframes x"`)
}

// Scenario: a marker missing its required "name" field must fail
// decoding instead of silently defaulting to an empty name.
func TestDecode_MissingMarkerNameFails(t *testing.T) {
	const doc = `{
		"textures": {},
		"compositions": {
			"c": {
				"width": 1,
				"height": 1,
				"layers": [
					{
						"name": "plain",
						"type": "colour",
						"blend_mode": "normal",
						"timeline_start": null,
						"timeline_unknown1": null,
						"timeline_duration": null,
						"timeline_unknown2": null,
						"markers": [{"frame": 0, "unknown": 3}]
					}
				]
			}
		}
	}`

	_, err := Decode([]byte(doc))
	require.Error(t, err)
	require.Contains(t, err.Error(), `missing required field "name"`)
}

// Scenario: a texture missing its required "height" field must fail
// decoding instead of silently defaulting height to 0.
func TestDecode_MissingTextureFieldFails(t *testing.T) {
	const doc = `{"textures": {"a": {"width": 1}}, "compositions": {}}`

	_, err := Decode([]byte(doc))
	require.Error(t, err)
	require.Contains(t, err.Error(), `missing required field "texture \"a\" height"`)
}

func TestDecode_PartialTimelineIsError(t *testing.T) {
	const doc = `{
		"textures": {},
		"compositions": {
			"c": {
				"width": 1,
				"height": 1,
				"layers": [
					{
						"name": "plain",
						"type": "colour",
						"blend_mode": "normal",
						"timeline_start": 1,
						"timeline_unknown1": null,
						"timeline_duration": 2,
						"timeline_unknown2": 4096
					}
				]
			}
		}
	}`

	_, err := Decode([]byte(doc))
	require.Error(t, err)
	require.Contains(t, err.Error(), "all present or all null")
}

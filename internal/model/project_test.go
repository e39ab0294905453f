package model

import (
	"strings"
	"testing"
)

func TestNewProject_ResolvesReferences(t *testing.T) {
	textures := []Texture{{Name: "a", Width: 2, Height: 3}}
	compositions := []Composition{
		{
			Name:   "c",
			Width:  4,
			Height: 5,
			Layers: []Layer{
				{Name: "L-a", Type: LayerTexture, BlendMode: BlendNormal},
			},
		},
	}

	project, err := NewProject(textures, compositions)
	if err != nil {
		t.Fatalf("NewProject() unexpected error: %v", err)
	}
	if len(project.Textures) != 1 || len(project.Compositions) != 1 {
		t.Fatalf("NewProject() = %+v, want one texture and one composition", project)
	}
}

func TestNewProject_UnresolvedReferenceIsError(t *testing.T) {
	compositions := []Composition{
		{
			Name: "c",
			Layers: []Layer{
				{Name: "L-missing", Type: LayerTexture, BlendMode: BlendNormal},
			},
		},
	}

	_, err := NewProject(nil, compositions)
	if err == nil {
		t.Fatal("NewProject() expected an error for an unresolved reference, got nil")
	}
	if !strings.Contains(err.Error(), "unknown asset") {
		t.Errorf("NewProject() error = %q, want it to name the missing asset", err)
	}
}

func TestLayer_AssetName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "L-background", want: "background"},
		{name: "no-hyphen-here", want: "hyphen-here"},
		{name: "plainname", want: "plainname"},
	}

	for _, tc := range tests {
		l := Layer{Name: tc.name}
		if got := l.AssetName(); got != tc.want {
			t.Errorf("Layer{Name: %q}.AssetName() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

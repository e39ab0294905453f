package model

import "fmt"

// NewProject builds a Project from a decoded or hand-assembled set of
// textures and compositions, validating that every layer's asset
// reference resolves to a texture or composition within the same
// project. An unresolved reference is a load-time error — the codec
// never produces a Project it cannot fully cross-reference.
func NewProject(textures []Texture, compositions []Composition) (*Project, error) {
	assets := make(map[string]struct{}, len(textures)+len(compositions))
	for _, t := range textures {
		assets[t.Name] = struct{}{}
	}
	for _, c := range compositions {
		assets[c.Name] = struct{}{}
	}

	for _, c := range compositions {
		for _, l := range c.Layers {
			if l.Type == LayerTexture || l.Type == LayerComposition {
				ref := l.AssetName()
				if _, ok := assets[ref]; !ok {
					return nil, fmt.Errorf("composition %q layer %q references unknown asset %q", c.Name, l.Name, ref)
				}
			}
		}
	}

	return &Project{Textures: textures, Compositions: compositions}, nil
}

// Package json adapts the jsoncodec package to the
// ports.Decoder/ports.Encoder interfaces and registers the "json"
// dialect with the factory, mirroring the teacher's
// internal/adapters/json generator package.
package json

import (
	"fmt"
	"os"

	"github.com/aeptools/aep/internal/adapters/factory"
	"github.com/aeptools/aep/internal/jsoncodec"
	"github.com/aeptools/aep/internal/model"
	"github.com/aeptools/aep/internal/ports"
)

func init() {
	a := New()
	factory.RegisterDecoder(ports.FormatJSON, a)
	factory.RegisterEncoder(ports.FormatJSON, a)
}

// Adapter implements both ports.Decoder and ports.Encoder for the
// JSON dialect.
type Adapter struct{}

// New returns the JSON dialect adapter, usable as both a
// ports.Decoder and a ports.Encoder.
func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) Decode(sourcePath string) (*model.Project, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sourcePath, err)
	}
	return jsoncodec.Decode(data)
}

func (a *Adapter) Encode(project *model.Project, sinkPath string) error {
	data, err := jsoncodec.Encode(project)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	if err := os.WriteFile(sinkPath, data, 0666); err != nil {
		return fmt.Errorf("write %s: %w", sinkPath, err)
	}
	return nil
}

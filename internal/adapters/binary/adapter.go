// Package binary adapts the architecture-parameterized bin codec to
// the ports.Decoder/ports.Encoder interfaces and registers an x86 and
// an x64 dialect with the factory, mirroring the teacher's per-format
// adapter packages (internal/adapters/png, internal/adapters/wav, ...)
// each registering themselves via init().
package binary

import (
	"fmt"
	"os"

	"github.com/aeptools/aep/internal/adapters/factory"
	"github.com/aeptools/aep/internal/bin"
	"github.com/aeptools/aep/internal/model"
	"github.com/aeptools/aep/internal/ports"
)

func init() {
	factory.RegisterDecoder(ports.FormatX86, NewDecoder(bin.X86))
	factory.RegisterEncoder(ports.FormatX86, NewEncoder(bin.X86))
	factory.RegisterDecoder(ports.FormatX64, NewDecoder(bin.X64))
	factory.RegisterEncoder(ports.FormatX64, NewEncoder(bin.X64))
}

// decoder reads a whole file into memory and hands it to bin.Decode —
// the format's backward references rule out a streaming reader, so the
// adapter owns the one os.ReadFile the same way the teacher's
// generator adapters own their os.Create.
type decoder struct {
	arch bin.Architecture
}

// NewDecoder returns a ports.Decoder for the given pointer-width
// dialect.
func NewDecoder(arch bin.Architecture) ports.Decoder {
	return &decoder{arch: arch}
}

func (d *decoder) Decode(sourcePath string) (*model.Project, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, fmt.Errorf("read %s (%s): %w", sourcePath, d.arch, err)
	}
	return bin.Decode(data, d.arch)
}

// encoder renders a Project and writes the complete result in one
// os.WriteFile, since phase 1 of bin.Encode already requires the whole
// byte layout to be known before anything is emitted.
type encoder struct {
	arch bin.Architecture
}

// NewEncoder returns a ports.Encoder for the given pointer-width
// dialect.
func NewEncoder(arch bin.Architecture) ports.Encoder {
	return &encoder{arch: arch}
}

func (e *encoder) Encode(project *model.Project, sinkPath string) error {
	data, err := bin.Encode(project, e.arch)
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.arch, err)
	}
	if err := os.WriteFile(sinkPath, data, 0666); err != nil {
		return fmt.Errorf("write %s (%s): %w", sinkPath, e.arch, err)
	}
	return nil
}

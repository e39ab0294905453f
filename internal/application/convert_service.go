// Package application wires the format registry into a single
// conversion operation, adapted from the teacher's FileService.
package application

import (
	"fmt"

	"github.com/aeptools/aep/internal/ports"
)

// ConvertService resolves an input/output format pair to a
// decoder/encoder pair and drives one decode-then-encode conversion.
type ConvertService struct {
	registry ports.Registry
}

// NewConvertService constructs a ConvertService backed by registry.
func NewConvertService(registry ports.Registry) *ConvertService {
	return &ConvertService{registry: registry}
}

// Convert decodes inputPath as inputFormat and encodes the resulting
// project as outputFormat at outputPath.
func (s *ConvertService) Convert(inputPath string, inputFormat ports.Format, outputPath string, outputFormat ports.Format) error {
	decoder, err := s.registry.DecoderFor(inputFormat)
	if err != nil {
		return fmt.Errorf("no decoder for input format '%s': %w", inputFormat, err)
	}

	project, err := decoder.Decode(inputPath)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", inputPath, err)
	}

	encoder, err := s.registry.EncoderFor(outputFormat)
	if err != nil {
		return fmt.Errorf("no encoder for output format '%s': %w", outputFormat, err)
	}

	if err := encoder.Encode(project, outputPath); err != nil {
		return fmt.Errorf("failed to encode %s: %w", outputPath, err)
	}
	return nil
}

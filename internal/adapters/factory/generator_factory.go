// Package factory holds the format-keyed registries that adapters
// populate via init() and that the application layer reads from to
// resolve a conversion request to a concrete decoder/encoder pair.
package factory

import (
	"fmt"
	"log"
	"sync"

	"github.com/aeptools/aep/internal/ports"
)

// registries store the decoders and encoders registered by each
// dialect's adapter package.
var (
	decoderRegistry = make(map[ports.Format]ports.Decoder)
	encoderRegistry = make(map[ports.Format]ports.Encoder)
	registryMutex   sync.RWMutex
)

// RegisterDecoder is called by dialect adapter packages during their
// init() phase.
func RegisterDecoder(format ports.Format, decoder ports.Decoder) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	if _, exists := decoderRegistry[format]; exists {
		log.Printf("Warning: Duplicate decoder registration for %s. Overwriting existing one.", format)
	}
	decoderRegistry[format] = decoder
}

// RegisterEncoder is called by dialect adapter packages during their
// init() phase.
func RegisterEncoder(format ports.Format, encoder ports.Encoder) {
	registryMutex.Lock()
	defer registryMutex.Unlock()
	if _, exists := encoderRegistry[format]; exists {
		log.Printf("Warning: Duplicate encoder registration for %s. Overwriting existing one.", format)
	}
	encoderRegistry[format] = encoder
}

// DynamicRegistry uses the registries populated by RegisterDecoder and
// RegisterEncoder.
type DynamicRegistry struct{}

// NewRegistry creates a new ports.Registry backed by the global
// decoder/encoder registries.
func NewRegistry() ports.Registry {
	return &DynamicRegistry{}
}

// DecoderFor returns the registered Decoder for format, if any.
func (f *DynamicRegistry) DecoderFor(format ports.Format) (ports.Decoder, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	d, ok := decoderRegistry[format]
	if !ok {
		return nil, fmt.Errorf("unsupported input format: '%s' (no decoder registered)", format)
	}
	return d, nil
}

// EncoderFor returns the registered Encoder for format, if any.
func (f *DynamicRegistry) EncoderFor(format ports.Format) (ports.Encoder, error) {
	registryMutex.RLock()
	defer registryMutex.RUnlock()

	e, ok := encoderRegistry[format]
	if !ok {
		return nil, fmt.Errorf("unsupported output format: '%s' (no encoder registered)", format)
	}
	return e, nil
}

// RegisteredFormats returns the formats that currently have both a
// decoder and an encoder registered.
func RegisteredFormats() []ports.Format {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	formats := make([]ports.Format, 0, len(decoderRegistry))
	for f := range decoderRegistry {
		if _, ok := encoderRegistry[f]; ok {
			formats = append(formats, f)
		}
	}
	return formats
}

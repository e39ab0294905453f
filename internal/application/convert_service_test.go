package application

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aeptools/aep/internal/model"
	"github.com/aeptools/aep/internal/ports"
)

type mockDecoder struct {
	project      *model.Project
	err          error
	calledWith   string
	decodeCalled bool
}

func (m *mockDecoder) Decode(sourcePath string) (*model.Project, error) {
	m.decodeCalled = true
	m.calledWith = sourcePath
	return m.project, m.err
}

type mockEncoder struct {
	err          error
	calledWith   *model.Project
	sinkPath     string
	encodeCalled bool
}

func (m *mockEncoder) Encode(project *model.Project, sinkPath string) error {
	m.encodeCalled = true
	m.calledWith = project
	m.sinkPath = sinkPath
	return m.err
}

type mockRegistry struct {
	decoders map[ports.Format]ports.Decoder
	encoders map[ports.Format]ports.Encoder
}

func (m *mockRegistry) DecoderFor(f ports.Format) (ports.Decoder, error) {
	d, ok := m.decoders[f]
	if !ok {
		return nil, fmt.Errorf("mock registry: no decoder for %s", f)
	}
	return d, nil
}

func (m *mockRegistry) EncoderFor(f ports.Format) (ports.Encoder, error) {
	e, ok := m.encoders[f]
	if !ok {
		return nil, fmt.Errorf("mock registry: no encoder for %s", f)
	}
	return e, nil
}

func TestConvertService_Convert(t *testing.T) {
	project := &model.Project{Textures: []model.Texture{{Name: "a", Width: 1, Height: 1}}}

	t.Run("success", func(t *testing.T) {
		dec := &mockDecoder{project: project}
		enc := &mockEncoder{}
		registry := &mockRegistry{
			decoders: map[ports.Format]ports.Decoder{ports.FormatX86: dec},
			encoders: map[ports.Format]ports.Encoder{ports.FormatJSON: enc},
		}
		service := NewConvertService(registry)

		err := service.Convert("in.bin", ports.FormatX86, "out.json", ports.FormatJSON)
		if err != nil {
			t.Fatalf("Convert() unexpected error: %v", err)
		}
		if !dec.decodeCalled || dec.calledWith != "in.bin" {
			t.Errorf("decoder not called with expected path, got %q", dec.calledWith)
		}
		if !enc.encodeCalled || enc.sinkPath != "out.json" || enc.calledWith != project {
			t.Errorf("encoder not called with expected project/path")
		}
	})

	t.Run("unknown input format", func(t *testing.T) {
		registry := &mockRegistry{decoders: map[ports.Format]ports.Decoder{}, encoders: map[ports.Format]ports.Encoder{}}
		service := NewConvertService(registry)

		err := service.Convert("in.bin", ports.FormatX86, "out.json", ports.FormatJSON)
		if err == nil || !strings.Contains(err.Error(), "no decoder for input format 'x86'") {
			t.Errorf("Convert() error = %v, want no decoder message", err)
		}
	})

	t.Run("decode failure", func(t *testing.T) {
		dec := &mockDecoder{err: errors.New("bad bytes")}
		registry := &mockRegistry{
			decoders: map[ports.Format]ports.Decoder{ports.FormatX86: dec},
			encoders: map[ports.Format]ports.Encoder{},
		}
		service := NewConvertService(registry)

		err := service.Convert("in.bin", ports.FormatX86, "out.json", ports.FormatJSON)
		if err == nil || !strings.Contains(err.Error(), "failed to decode in.bin") {
			t.Errorf("Convert() error = %v, want decode failure message", err)
		}
	})

	t.Run("unknown output format", func(t *testing.T) {
		dec := &mockDecoder{project: project}
		registry := &mockRegistry{
			decoders: map[ports.Format]ports.Decoder{ports.FormatX86: dec},
			encoders: map[ports.Format]ports.Encoder{},
		}
		service := NewConvertService(registry)

		err := service.Convert("in.bin", ports.FormatX86, "out.json", ports.FormatJSON)
		if err == nil || !strings.Contains(err.Error(), "no encoder for output format 'json'") {
			t.Errorf("Convert() error = %v, want no encoder message", err)
		}
	})

	t.Run("encode failure", func(t *testing.T) {
		dec := &mockDecoder{project: project}
		enc := &mockEncoder{err: errors.New("disk full")}
		registry := &mockRegistry{
			decoders: map[ports.Format]ports.Decoder{ports.FormatX86: dec},
			encoders: map[ports.Format]ports.Encoder{ports.FormatJSON: enc},
		}
		service := NewConvertService(registry)

		err := service.Convert("in.bin", ports.FormatX86, "out.json", ports.FormatJSON)
		if err == nil || !strings.Contains(err.Error(), "failed to encode out.json") {
			t.Errorf("Convert() error = %v, want encode failure message", err)
		}
	})
}

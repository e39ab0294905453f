package factory

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aeptools/aep/internal/model"
	"github.com/aeptools/aep/internal/ports"
)

// --- Mocks for testing registration ---
type mockDecoder struct{ id string }

func (m *mockDecoder) Decode(sourcePath string) (*model.Project, error) {
	return nil, fmt.Errorf("mock decode called for %s", m.id)
}

type mockEncoder struct{ id string }

func (m *mockEncoder) Encode(project *model.Project, sinkPath string) error {
	return fmt.Errorf("mock encode called for %s", m.id)
}

// --- Test Helper to Reset Registries ---
// WARNING: this modifies global state and should be used carefully,
// ideally by running tests sequentially.
var testRegistryMutex sync.Mutex

func resetRegistry() {
	testRegistryMutex.Lock()
	defer testRegistryMutex.Unlock()
	decoderRegistry = make(map[ports.Format]ports.Decoder)
	encoderRegistry = make(map[ports.Format]ports.Encoder)
}

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()
	if registry == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	var _ ports.Registry = registry
	if _, ok := registry.(*DynamicRegistry); !ok {
		t.Errorf("NewRegistry() returned type %T, want *DynamicRegistry", registry)
	}
}

func TestDynamicRegistry_DecoderFor(t *testing.T) {
	resetRegistry()

	decX86 := &mockDecoder{id: "x86-decoder"}
	decJSON := &mockDecoder{id: "json-decoder"}
	RegisterDecoder(ports.FormatX86, decX86)
	RegisterDecoder(ports.FormatJSON, decJSON)

	registry := NewRegistry()

	tests := []struct {
		name        string
		format      ports.Format
		wantID      string
		wantErr     bool
		wantErrText string
	}{
		{name: "x86 decoder", format: ports.FormatX86, wantID: "x86-decoder"},
		{name: "json decoder", format: ports.FormatJSON, wantID: "json-decoder"},
		{name: "unregistered x64", format: ports.FormatX64, wantErr: true, wantErrText: "unsupported input format: 'x64'"},
		{name: "empty format", format: "", wantErr: true, wantErrText: "unsupported input format: ''"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := registry.DecoderFor(tc.format)
			if (err != nil) != tc.wantErr {
				t.Fatalf("DecoderFor(%q) error = %v, wantErr %v", tc.format, err, tc.wantErr)
			}
			if tc.wantErr {
				if err == nil || !strings.Contains(err.Error(), tc.wantErrText) {
					t.Errorf("DecoderFor(%q) error = %v, want containing %q", tc.format, err, tc.wantErrText)
				}
				return
			}
			mock, ok := got.(*mockDecoder)
			if !ok || mock.id != tc.wantID {
				t.Errorf("DecoderFor(%q) = %v, want id %q", tc.format, got, tc.wantID)
			}
		})
	}
}

func TestDynamicRegistry_EncoderFor(t *testing.T) {
	resetRegistry()

	encX64 := &mockEncoder{id: "x64-encoder"}
	RegisterEncoder(ports.FormatX64, encX64)

	registry := NewRegistry()

	got, err := registry.EncoderFor(ports.FormatX64)
	if err != nil {
		t.Fatalf("EncoderFor(x64) failed: %v", err)
	}
	if mock, ok := got.(*mockEncoder); !ok || mock.id != "x64-encoder" {
		t.Errorf("EncoderFor(x64) = %v, want id x64-encoder", got)
	}

	_, err = registry.EncoderFor(ports.FormatJSON)
	if err == nil || !strings.Contains(err.Error(), "unsupported output format: 'json'") {
		t.Errorf("EncoderFor(json) error = %v, want unsupported output format", err)
	}
}

func TestRegisterDecoder_Overwrite(t *testing.T) {
	resetRegistry()

	RegisterDecoder(ports.FormatX86, &mockDecoder{id: "gen1"})

	registry := NewRegistry()
	dec, err := registry.DecoderFor(ports.FormatX86)
	if err != nil {
		t.Fatalf("DecoderFor(x86) failed after initial registration: %v", err)
	}
	if mock, ok := dec.(*mockDecoder); !ok || mock.id != "gen1" {
		t.Fatalf("DecoderFor(x86) returned wrong decoder after initial registration: %v", dec)
	}

	RegisterDecoder(ports.FormatX86, &mockDecoder{id: "gen2"})

	dec, err = registry.DecoderFor(ports.FormatX86)
	if err != nil {
		t.Fatalf("DecoderFor(x86) failed after overwrite: %v", err)
	}
	if mock, ok := dec.(*mockDecoder); !ok || mock.id != "gen2" {
		t.Errorf("DecoderFor(x86) did not return the overwritten decoder, got %v", dec)
	}
}

func TestRegisteredFormats(t *testing.T) {
	resetRegistry()

	RegisterDecoder(ports.FormatX86, &mockDecoder{id: "x86"})
	RegisterEncoder(ports.FormatX86, &mockEncoder{id: "x86"})
	RegisterDecoder(ports.FormatJSON, &mockDecoder{id: "json"})
	RegisterEncoder(ports.FormatJSON, &mockEncoder{id: "json"})
	// x64 only has a decoder registered, so it shouldn't appear as a
	// fully usable format.
	RegisterDecoder(ports.FormatX64, &mockDecoder{id: "x64"})

	expected := []ports.Format{ports.FormatX86, ports.FormatJSON}
	got := RegisteredFormats()

	sort.Slice(expected, func(i, j int) bool { return expected[i] < expected[j] })
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })

	if !reflect.DeepEqual(got, expected) {
		t.Errorf("RegisteredFormats() = %v, want %v", got, expected)
	}

	resetRegistry()
	if got := RegisteredFormats(); len(got) != 0 {
		t.Errorf("RegisteredFormats() on empty registry = %v, want empty slice", got)
	}
}

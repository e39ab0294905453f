package ports

import "github.com/aeptools/aep/internal/model"

// Decoder is the port for anything that can parse a dialect's file at
// sourcePath into a Project. Each concrete decoder owns its own file
// I/O, the same way the teacher's FileGenerator.Generate owns the
// os.Create it performs.
type Decoder interface {
	Decode(sourcePath string) (*model.Project, error)
}

// Encoder is the port for anything that can render a Project into a
// dialect's file at sinkPath.
type Encoder interface {
	Encode(project *model.Project, sinkPath string) error
}

// Registry is the port for looking up decoders and encoders by Format.
type Registry interface {
	DecoderFor(f Format) (Decoder, error)
	EncoderFor(f Format) (Encoder, error)
}

package decoder

import (
	"bytes"
	"fmt"
	"os"
)

// SourceKind tells where encoded audio lives.
type SourceKind int

const (
	SourceNone SourceKind = iota
	// SourceFile is a path on disk.
	SourceFile
	// SourceBlob is a whole downloaded file held in memory.
	SourceBlob
	// SourceBytes is raw encoded bytes handed over by the caller.
	SourceBytes
)

func (k SourceKind) String() string {
	switch k {
	case SourceFile:
		return "file"
	case SourceBlob:
		return "blob"
	case SourceBytes:
		return "bytes"
	default:
		return "none"
	}
}

// Source is the encoded media of one track. The zero value is empty.
type Source struct {
	kind SourceKind
	path string
	data []byte
}

// File returns a source reading from path.
func File(path string) Source {
	return Source{kind: SourceFile, path: path}
}

// Blob returns a source over an in-memory copy of a file.
func Blob(data []byte) Source {
	return Source{kind: SourceBlob, data: data}
}

// Bytes returns a source over raw encoded bytes.
func Bytes(data []byte) Source {
	return Source{kind: SourceBytes, data: data}
}

func (s Source) Kind() SourceKind { return s.kind }
func (s Source) Path() string     { return s.path }
func (s Source) Data() []byte     { return s.data }

// IsEmpty reports whether the source has nothing to decode.
func (s Source) IsEmpty() bool {
	switch s.kind {
	case SourceFile:
		return s.path == ""
	case SourceBlob, SourceBytes:
		return len(s.data) == 0
	default:
		return true
	}
}

// Same reports whether both sources denote the same media. In-memory
// sources compare by content.
func (s Source) Same(o Source) bool {
	if s.kind != o.kind {
		return false
	}
	switch s.kind {
	case SourceFile:
		return s.path == o.path
	case SourceBlob, SourceBytes:
		return bytes.Equal(s.data, o.data)
	default:
		return true
	}
}

func (s Source) String() string {
	switch s.kind {
	case SourceFile:
		return "file:" + s.path
	case SourceBlob, SourceBytes:
		return fmt.Sprintf("%s:%d bytes", s.kind, len(s.data))
	default:
		return "none"
	}
}

// input is an opened Source. Codecs pull encoded bytes through its read
// and seek callbacks and never see the backing file or slice.
type input struct {
	src   Source
	read  func(p []byte) (int, error)
	seek  func(offset int64, whence int) (int64, error)
	close func() error
}

func (in *input) Read(p []byte) (int, error) { return in.read(p) }

func (in *input) Seek(offset int64, whence int) (int64, error) {
	return in.seek(offset, whence)
}

func (in *input) Close() error {
	if in.close == nil {
		return nil
	}
	return in.close()
}

func (s Source) open() (*input, error) {
	if s.IsEmpty() {
		return nil, ErrEmptySource
	}
	if s.kind == SourceFile {
		f, err := os.Open(s.path)
		if err != nil {
			return nil, err
		}
		return &input{src: s, read: f.Read, seek: f.Seek, close: f.Close}, nil
	}
	r := bytes.NewReader(s.data)
	return &input{src: s, read: r.Read, seek: r.Seek}, nil
}

package file

import (
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
)

// Source is a user-selected file handle.
type Source interface {
	Name() string
	// Type is the MIME type, empty if unknown.
	Type() string
	Open() (io.ReadCloser, error)
}

// PathSource reads a file from the local file system.
type PathSource string

func (p PathSource) Name() string { return filepath.Base(string(p)) }

func (p PathSource) Type() string { return mime.TypeByExtension(filepath.Ext(string(p))) }

func (p PathSource) Open() (io.ReadCloser, error) { return os.Open(string(p)) }

// FormSource reads a file uploaded in a multipart form.
type FormSource struct {
	*multipart.FileHeader
}

func (s FormSource) Name() string { return s.Filename }

func (s FormSource) Type() string { return s.Header.Get("Content-Type") }

func (s FormSource) Open() (io.ReadCloser, error) { return s.FileHeader.Open() }

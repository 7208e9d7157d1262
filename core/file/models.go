package file

import (
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/wazazi/core/user"
)

// File is an uploaded file with its content inlined as a data URL.
type File struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	UploadedBy string    `json:"uploadedBy"` // uploader's name
	Role       user.Role `json:"role"`       // uploader's role
	DataURL    string    `json:"dataUrl"`
	Type       string    `json:"type"`
}

var errMalformedDataURL = errors.New("malformed data URL")

func encodeDataURL(mimeType string, content []byte) string {
	var b strings.Builder
	b.WriteString("data:")
	b.WriteString(mimeType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(content))
	return b.String()
}

// Decode returns the file's content and MIME type from its data URL.
func Decode(f File) (content []byte, mimeType string, err error) {
	if !strings.HasPrefix(f.DataURL, "data:") {
		return nil, "", errMalformedDataURL
	}
	meta, payload, ok := strings.Cut(strings.TrimPrefix(f.DataURL, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, "", errMalformedDataURL
	}
	content, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", errors.Wrap(err, "decoding data URL")
	}
	return content, strings.TrimSuffix(meta, ";base64"), nil
}

// Summary is a File without its content.
type Summary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	UploadedBy string    `json:"uploadedBy"`
	Role       user.Role `json:"role"`
	Type       string    `json:"type"`
	Size       int       `json:"size"`
}

func Summarize(f File) Summary {
	size := 0
	if _, payload, ok := strings.Cut(f.DataURL, ","); ok {
		size = base64.StdEncoding.DecodedLen(len(payload)) - strings.Count(payload, "=")
	}
	return Summary{ID: f.ID, Name: f.Name, UploadedBy: f.UploadedBy, Role: f.Role, Type: f.Type, Size: size}
}

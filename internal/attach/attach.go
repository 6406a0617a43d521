// Package attach converts local files into the inline data-URI payloads
// the gateway accepts, partitioned into images and other documents.
package attach

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/calder-dev/tidechat/internal/models"
)

// MaxFileSize caps one attachment. Inline base64 payloads ride inside
// the request body, so the cap stays modest.
const MaxFileSize = 10 << 20

// File is one attachment candidate. Name and MimeType are optional and
// derived from Path when empty.
type File struct {
	Path     string
	Name     string
	MimeType string
}

// Payload is the converted, partitioned attachment set.
type Payload struct {
	Images    []models.Attachment
	Documents []models.Attachment
}

// ConvertFunc is the conversion capability consumed by the chat service.
type ConvertFunc func(files []File) (*Payload, error)

// Convert reads and encodes files. Any unreadable or oversized file
// fails the whole batch; a turn never goes out with half its
// attachments.
func Convert(files []File) (*Payload, error) {
	payload := &Payload{}

	for _, f := range files {
		att, err := convertOne(f)
		if err != nil {
			return nil, err
		}
		if IsImage(att.MimeType) {
			payload.Images = append(payload.Images, att)
		} else {
			payload.Documents = append(payload.Documents, att)
		}
	}

	return payload, nil
}

func convertOne(f File) (models.Attachment, error) {
	info, err := os.Stat(f.Path)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("stat attachment %q: %w", f.Path, err)
	}
	if info.Size() > MaxFileSize {
		return models.Attachment{}, fmt.Errorf("attachment %q exceeds %d bytes", f.Path, MaxFileSize)
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return models.Attachment{}, fmt.Errorf("read attachment %q: %w", f.Path, err)
	}

	name := f.Name
	if name == "" {
		name = filepath.Base(f.Path)
	}

	mimeType := f.MimeType
	if mimeType == "" {
		mimeType = detectMime(f.Path, data)
	}

	uri := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
	return models.Attachment{DataURI: uri, Name: name, MimeType: mimeType}, nil
}

// IsImage reports whether mimeType belongs in the image partition.
func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

func detectMime(path string, data []byte) string {
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		if i := strings.IndexByte(byExt, ';'); i >= 0 {
			byExt = byExt[:i]
		}
		return byExt
	}
	return http.DetectContentType(data)
}

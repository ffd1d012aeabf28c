// Package submission assembles accepted forms into multipart requests and
// forwards them to the barangay management API.
package submission

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strings"
)

// FilePart is one uploaded file destined for the multipart body. Callers
// skip absent optional files entirely rather than sending empty parts.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Payload is a finished multipart body ready to forward.
type Payload struct {
	ContentType string
	Body        []byte
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Build writes fields and files into one multipart body. Field order is
// deterministic so request logs diff cleanly.
func Build(fields map[string]string, files []FilePart) (*Payload, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := writer.WriteField(key, fields[key]); err != nil {
			return nil, fmt.Errorf("write field %s: %w", key, err)
		}
	}

	for _, file := range files {
		part, err := writer.CreatePart(fileHeader(file))
		if err != nil {
			return nil, fmt.Errorf("create part %s: %w", file.Field, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, fmt.Errorf("write part %s: %w", file.Field, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}
	return &Payload{
		ContentType: writer.FormDataContentType(),
		Body:        buf.Bytes(),
	}, nil
}

// fileHeader builds the part header by hand so the stored content type
// survives instead of the octet-stream default.
func fileHeader(file FilePart) textproto.MIMEHeader {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(file.Field), quoteEscaper.Replace(file.Filename)))
	header.Set("Content-Type", file.ContentType)
	return header
}

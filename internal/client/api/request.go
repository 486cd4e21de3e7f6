package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"sort"

	"github.com/google/go-querystring/query"
)

// Request describes one API call. Query may be url.Values or a struct with
// `url` tags. Body is sent as JSON unless Form is set, in which case the
// call is a multipart upload with the extended timeout.
type Request struct {
	Method string
	Path   string
	Query  any
	Body   any
	Form   *Form

	retried bool
}

// Form is a multipart body with text fields and one file part.
type Form struct {
	Fields    map[string]string
	FileField string
	FileName  string
	Content   []byte
}

func (r *Request) encodeQuery() (string, error) {
	switch q := r.Query.(type) {
	case nil:
		return "", nil
	case url.Values:
		return q.Encode(), nil
	default:
		v, err := query.Values(q)
		if err != nil {
			return "", fmt.Errorf("encode query: %w", err)
		}
		return v.Encode(), nil
	}
}

// encodeBody returns a fresh reader on every call so a replay can resend it.
func (r *Request) encodeBody() (io.Reader, string, error) {
	if r.Form != nil {
		return r.Form.encode()
	}
	if r.Body == nil {
		return nil, "", nil
	}
	b, err := json.Marshal(r.Body)
	if err != nil {
		return nil, "", fmt.Errorf("encode body: %w", err)
	}
	return bytes.NewReader(b), "application/json", nil
}

func (f *Form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, f.Fields[k]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}

	field := f.FileField
	if field == "" {
		field = "file"
	}
	part, err := w.CreateFormFile(field, f.FileName)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(f.Content); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

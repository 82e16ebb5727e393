// Package codec reads batch requests from and writes batch responses to the
// file formats the CLI and HTTP transport accept.
package codec

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	gotoml "github.com/pelletier/go-toml/v2"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"

	"batchkit/internal/batch"
	"batchkit/internal/errors"
)

// Format names a serialization format
type Format string

const (
	JSON     Format = "json"
	YAML     Format = "yaml"
	TOML     Format = "toml"
	Protobuf Format = "protobuf" // encode only; a google.protobuf.Value message
)

// Content types used on the wire
const (
	ContentTypeJSON     = "application/json"
	ContentTypeProtobuf = "application/x-protobuf"
	ContentTypeYAML     = "application/yaml"
	ContentTypeTOML     = "application/toml"
)

// ParseFormat accepts a format name, case-insensitively
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	case "protobuf", "proto", "pb":
		return Protobuf, nil
	}
	return "", errors.Newf(errors.Invalid, "unknown format %q", s)
}

// FormatFromPath picks a request format from a file extension
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", errors.Newf(errors.Invalid, "cannot infer format of %q: no extension", path)
	}
	f, err := ParseFormat(ext)
	if err != nil || f == Protobuf {
		return "", errors.Newf(errors.Invalid, "unsupported request file extension %q", filepath.Ext(path))
	}
	return f, nil
}

// ContentType returns the MIME type for f
func (f Format) ContentType() string {
	switch f {
	case YAML:
		return ContentTypeYAML
	case TOML:
		return ContentTypeTOML
	case Protobuf:
		return ContentTypeProtobuf
	}
	return ContentTypeJSON
}

// DecodeRequest reads one batch request. Unknown fields and unknown
// operation names are rejected with an errors.Invalid error.
func DecodeRequest[In, Id any](format Format, r io.Reader) (batch.Request[In, Id], error) {
	var req batch.Request[In, Id]

	switch format {
	case JSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return req, decodeError(err)
		}
		if _, err := dec.Token(); !stderrors.Is(err, io.EOF) {
			return req, errors.New(errors.Invalid, "unexpected data after batch request", nil)
		}

	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&req); err != nil {
			return req, decodeError(err)
		}

	case TOML:
		md, err := toml.NewDecoder(r).Decode(&req)
		if err != nil {
			return req, decodeError(err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return req, errors.Newf(errors.Invalid, "unknown field %q", undecoded[0].String())
		}

	default:
		return req, errors.Newf(errors.Invalid, "cannot decode requests from %q", format)
	}

	return req, nil
}

func decodeError(err error) error {
	if stderrors.Is(err, io.EOF) {
		return errors.New(errors.Invalid, "empty batch request", nil)
	}
	return errors.New(errors.Invalid, "malformed batch request", err)
}

// EncodeResponse writes resp in format
func EncodeResponse(format Format, w io.Writer, resp batch.Response) error {
	if resp.Responses == nil {
		resp.Responses = []batch.ResponseElement{}
	}

	switch format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)

	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(resp); err != nil {
			return err
		}
		return enc.Close()

	case TOML:
		return gotoml.NewEncoder(w).Encode(resp)

	case Protobuf:
		data, err := MarshalProto(resp)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}

	return errors.Newf(errors.Invalid, "cannot encode responses as %q", format)
}

// MarshalProto encodes v as a google.protobuf.Value. v goes through its
// JSON form first so field names match the JSON encoding.
func MarshalProto(v interface{}) ([]byte, error) {
	value, err := ToValue(v)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(value)
}

// ToValue converts v to a structpb.Value via its JSON representation
func ToValue(v interface{}) (*structpb.Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}

	var generic interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("normalize response: %w", err)
	}

	value, err := structpb.NewValue(generic)
	if err != nil {
		return nil, fmt.Errorf("convert response: %w", err)
	}
	return value, nil
}

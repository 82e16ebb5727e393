package codec

import (
	"bytes"
	"strings"
	"testing"

	gotoml "github.com/pelletier/go-toml/v2"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"

	"batchkit/internal/batch"
	"batchkit/internal/errors"
)

type widget struct {
	Name  string `json:"name" yaml:"name" toml:"name"`
	Count int    `json:"count" yaml:"count" toml:"count"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", JSON, false},
		{"JSON", JSON, false},
		{"yml", YAML, false},
		{"yaml", YAML, false},
		{" toml ", TOML, false},
		{"pb", Protobuf, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"batch.json", JSON, false},
		{"dir/batch.YAML", YAML, false},
		{"batch.yml", YAML, false},
		{"batch.toml", TOML, false},
		{"batch.pb", "", true},
		{"batch", "", true},
		{"batch.txt", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FormatFromPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestDecodeRequest_AllFormats(t *testing.T) {
	inputs := map[Format]string{
		JSON: `{"requests": [
			{"operation": "create", "body": {"name": "a", "count": 2}},
			{"operation": "fetch", "id": 7},
			{"operation": "list"}
		]}`,
		YAML: `requests:
  - operation: create
    body:
      name: a
      count: 2
  - operation: fetch
    id: 7
  - operation: list
`,
		TOML: `[[requests]]
operation = "create"
[requests.body]
name = "a"
count = 2

[[requests]]
operation = "fetch"
id = 7

[[requests]]
operation = "list"
`,
	}

	for format, input := range inputs {
		t.Run(string(format), func(t *testing.T) {
			req, err := DecodeRequest[widget, int64](format, strings.NewReader(input))
			if err != nil {
				t.Fatalf("DecodeRequest() error = %v", err)
			}
			if len(req.Requests) != 3 {
				t.Fatalf("got %d elements, want 3", len(req.Requests))
			}

			create := req.Requests[0]
			if create.Operation != batch.Create || create.Body == nil || create.ID != nil {
				t.Errorf("element 0 = %+v", create)
			} else if create.Body.Name != "a" || create.Body.Count != 2 {
				t.Errorf("element 0 body = %+v", *create.Body)
			}

			fetch := req.Requests[1]
			if fetch.Operation != batch.Fetch || fetch.ID == nil || *fetch.ID != 7 || fetch.Body != nil {
				t.Errorf("element 1 = %+v", fetch)
			}

			if list := req.Requests[2]; list.Operation != batch.List || list.ID != nil || list.Body != nil {
				t.Errorf("element 2 = %+v", list)
			}
		})
	}
}

func TestDecodeRequest_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"json empty", JSON, ""},
		{"json malformed", JSON, `{"requests": [`},
		{"json unknown field", JSON, `{"requests": [], "extra": 1}`},
		{"json unknown element field", JSON, `{"requests": [{"operation": "list", "what": 1}]}`},
		{"json unknown operation", JSON, `{"requests": [{"operation": "explode"}]}`},
		{"json trailing data", JSON, `{"requests": []} {"requests": []}`},
		{"json trailing bracket", JSON, `{"requests": [{"operation": "list"}]}]`},
		{"json trailing brace", JSON, `{"requests": []}}`},
		{"yaml empty", YAML, ""},
		{"yaml unknown field", YAML, "requests: []\nextra: 1\n"},
		{"yaml unknown operation", YAML, "requests:\n  - operation: explode\n"},
		{"toml malformed", TOML, "[[requests]\n"},
		{"toml unknown field", TOML, "[[requests]]\noperation = \"list\"\nwhat = 1\n"},
		{"toml unknown operation", TOML, "[[requests]]\noperation = \"explode\"\n"},
		{"protobuf input", Protobuf, "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRequest[widget, int64](tt.format, strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected an error")
			}
			if errors.CategoryOf(err) != errors.Invalid {
				t.Errorf("category = %v, want INVALID (err: %v)", errors.CategoryOf(err), err)
			}
		})
	}
}

func TestDecodeRequest_TrailingWhitespace(t *testing.T) {
	req, err := DecodeRequest[widget, int64](JSON, strings.NewReader("{\"requests\": [{\"operation\": \"list\"}]}\n\n"))
	if err != nil {
		t.Fatalf("DecodeRequest() error = %v", err)
	}
	if len(req.Requests) != 1 {
		t.Errorf("len(Requests) = %d, want 1", len(req.Requests))
	}
}

func sampleResponse() batch.Response {
	return batch.Response{Responses: []batch.ResponseElement{
		{Status: 201, ResourcePath: "items/1"},
		{Status: 200, ResourcePath: "items/1", Body: widget{Name: "a", Count: 2}},
		{Status: 404, ResourcePath: "items/9", Message: "item 9 not found"},
	}}
}

func TestEncodeResponse_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeResponse(JSON, &buf, sampleResponse()); err != nil {
		t.Fatalf("EncodeResponse() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"responses"`, `"status": 201`, `"resourcePath": "items/1"`, `"message": "item 9 not found"`, `"name": "a"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}

func TestEncodeResponse_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeResponse(JSON, &buf, batch.Response{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"responses": []`) {
		t.Errorf("empty response = %s, want an empty array", buf.String())
	}
}

func TestEncodeResponse_YAML(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeResponse(YAML, &buf, sampleResponse()); err != nil {
		t.Fatalf("EncodeResponse() error = %v", err)
	}

	var decoded struct {
		Responses []struct {
			Status       int    `yaml:"status"`
			ResourcePath string `yaml:"resourcePath"`
			Message      string `yaml:"message"`
		} `yaml:"responses"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, buf.String())
	}
	if len(decoded.Responses) != 3 || decoded.Responses[2].Status != 404 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestEncodeResponse_TOML(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeResponse(TOML, &buf, sampleResponse()); err != nil {
		t.Fatalf("EncodeResponse() error = %v", err)
	}

	var decoded struct {
		Responses []struct {
			Status       int    `toml:"status"`
			ResourcePath string `toml:"resourcePath"`
		} `toml:"responses"`
	}
	if err := gotoml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not TOML: %v\n%s", err, buf.String())
	}
	if len(decoded.Responses) != 3 || decoded.Responses[0].ResourcePath != "items/1" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestEncodeResponse_Protobuf(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeResponse(Protobuf, &buf, sampleResponse()); err != nil {
		t.Fatalf("EncodeResponse() error = %v", err)
	}

	var value structpb.Value
	if err := proto.Unmarshal(buf.Bytes(), &value); err != nil {
		t.Fatalf("proto.Unmarshal() error = %v", err)
	}
	responses := value.GetStructValue().GetFields()["responses"].GetListValue().GetValues()
	if len(responses) != 3 {
		t.Fatalf("got %d responses, want 3", len(responses))
	}
	first := responses[0].GetStructValue().GetFields()
	if first["status"].GetNumberValue() != 201 {
		t.Errorf("status = %v, want 201", first["status"])
	}
	if first["resourcePath"].GetStringValue() != "items/1" {
		t.Errorf("resourcePath = %v, want items/1", first["resourcePath"])
	}
	second := responses[1].GetStructValue().GetFields()["body"].GetStructValue().GetFields()
	if second["name"].GetStringValue() != "a" {
		t.Errorf("body.name = %v, want a", second["name"])
	}
}

func TestFormat_ContentType(t *testing.T) {
	tests := map[Format]string{
		JSON:     ContentTypeJSON,
		YAML:     ContentTypeYAML,
		TOML:     ContentTypeTOML,
		Protobuf: ContentTypeProtobuf,
	}
	for f, want := range tests {
		if got := f.ContentType(); got != want {
			t.Errorf("%s.ContentType() = %q, want %q", f, got, want)
		}
	}
}

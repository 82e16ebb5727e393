package batch

// RequestElement is one unit of batch work. Body and ID are optional; which of
// them must be present depends on Operation.
type RequestElement[In, Id any] struct {
	Operation Operation `json:"operation" yaml:"operation" toml:"operation"`
	Body      *In       `json:"body,omitempty" yaml:"body,omitempty" toml:"body,omitempty"`
	ID        *Id       `json:"id,omitempty" yaml:"id,omitempty" toml:"id,omitempty"`
}

// Request is an ordered batch of elements against one resource
type Request[In, Id any] struct {
	Requests []RequestElement[In, Id] `json:"requests" yaml:"requests" toml:"requests"`
}

// NewElement builds a request element; nil body or id means absent.
func NewElement[In, Id any](op Operation, body *In, id *Id) RequestElement[In, Id] {
	return RequestElement[In, Id]{Operation: op, Body: body, ID: id}
}

// ResponseElement is the outcome of one request element. Body is only set for
// List and Fetch; other operations are addressed through ResourcePath.
type ResponseElement struct {
	Status       int         `json:"status" yaml:"status" toml:"status"`
	ResourcePath string      `json:"resourcePath" yaml:"resourcePath" toml:"resourcePath"`
	Message      string      `json:"message" yaml:"message" toml:"message"`
	Body         interface{} `json:"body" yaml:"body" toml:"body,omitempty"`
}

// Response mirrors a Request: same length, same order.
type Response struct {
	Responses []ResponseElement `json:"responses" yaml:"responses" toml:"responses"`
}

// CallResult is the uniform outcome of attempting one operation
type CallResult struct {
	Status  int
	Message string
	Value   interface{}
}

// Messages for results synthesized without calling a handler
const (
	MessageEmptyBody = "empty request body"
	MessageNullID    = "null id"
)

var (
	emptyBodyResult  = CallResult{Status: 400, Message: MessageEmptyBody}
	nullIDResult     = CallResult{Status: 400, Message: MessageNullID}
	notAllowedResult = CallResult{Status: 405}
)

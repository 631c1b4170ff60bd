// Package wire implements the JSON-RPC 2.0 envelope layer shared by hosts,
// views and relays: parsing, classification, message builders and per-method
// parameter schemas.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSON-RPC version string carried by every envelope.
const JSONRPCVersion = "2.0"

// Standard JSON-RPC error codes, plus the implementation-defined range.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	// CodeServerError covers implementation-defined denials: link denied,
	// invalid URL, policy violation, context-update denied, teardown error.
	CodeServerError = -32000
)

// Kind discriminates the four envelope variants.
type Kind uint8

const (
	KindRequest Kind = iota
	KindNotification
	KindResponse
	KindError
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindNotification:
		return "notification"
	case KindResponse:
		return "response"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// Error is the JSON-RPC error object: {code, message} with optional data.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface so responses can flow through
// ordinary error returns.
func (e *Error) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// NewError creates an error object with the given code and message.
func NewError(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Envelope is the wire shape of every message. Exactly one of
// {method-bearing, result-bearing, error-bearing} is populated; Kind()
// reports which variant this is.
//
// Correlation ids are opaque raw JSON: view-originated ids are echoed back
// verbatim and never reinterpreted.
type Envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Kind classifies the envelope. Classification order matches the reference
// protocol: no id means notification; a result or error field means
// response; everything else is a request.
func (e *Envelope) Kind() Kind {
	if len(e.ID) == 0 || bytes.Equal(e.ID, []byte("null")) {
		return KindNotification
	}
	if e.Error != nil {
		return KindError
	}
	if e.Result != nil {
		return KindResponse
	}
	return KindRequest
}

// IDKey returns the correlation id as a map key. Notifications return "".
func (e *Envelope) IDKey() string {
	if len(e.ID) == 0 {
		return ""
	}
	return string(e.ID)
}

// CodecError reports why an inbound payload failed decoding. Malformed
// payloads are dropped and logged by callers; they never surface to a
// waiting caller.
type CodecError struct {
	Type    CodecErrorType
	Message string
}

type CodecErrorType int

const (
	CodecErrorTypeParse CodecErrorType = iota
	CodecErrorTypeShape
)

func (e *CodecError) Error() string {
	switch e.Type {
	case CodecErrorTypeParse:
		return fmt.Sprintf("codec: malformed JSON: %s", e.Message)
	case CodecErrorTypeShape:
		return fmt.Sprintf("codec: invalid envelope: %s", e.Message)
	default:
		return fmt.Sprintf("codec error: %s", e.Message)
	}
}

// Decode parses raw bytes into a validated envelope.
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &CodecError{Type: CodecErrorTypeParse, Message: err.Error()}
	}
	if err := validate(&env); err != nil {
		return nil, err
	}
	return &env, nil
}

// validate enforces the exactly-one-variant rule on a decoded envelope.
func validate(env *Envelope) error {
	if env.JSONRPC != JSONRPCVersion {
		return &CodecError{Type: CodecErrorTypeShape, Message: fmt.Sprintf("jsonrpc must be %q, got %q", JSONRPCVersion, env.JSONRPC)}
	}
	hasMethod := env.Method != ""
	hasResult := env.Result != nil
	hasError := env.Error != nil
	switch {
	case hasMethod && (hasResult || hasError):
		return &CodecError{Type: CodecErrorTypeShape, Message: "method-bearing envelope must not carry result or error"}
	case hasResult && hasError:
		return &CodecError{Type: CodecErrorTypeShape, Message: "envelope carries both result and error"}
	case !hasMethod && !hasResult && !hasError:
		return &CodecError{Type: CodecErrorTypeShape, Message: "envelope carries neither method nor result nor error"}
	}
	if (hasResult || hasError) && (len(env.ID) == 0 || bytes.Equal(env.ID, []byte("null"))) {
		return &CodecError{Type: CodecErrorTypeShape, Message: "response envelope missing id"}
	}
	return nil
}

// Encode serializes an envelope.
func Encode(env *Envelope) ([]byte, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, &CodecError{Type: CodecErrorTypeShape, Message: err.Error()}
	}
	return data, nil
}

// NewRequest builds a request envelope. Params may be any JSON-marshalable
// value or nil.
func NewRequest(id string, method string, params any) (*Envelope, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, err
	}
	idRaw, err := json.Marshal(id)
	if err != nil {
		return nil, &CodecError{Type: CodecErrorTypeShape, Message: err.Error()}
	}
	return &Envelope{JSONRPC: JSONRPCVersion, ID: idRaw, Method: method, Params: raw}, nil
}

// NewNotification builds a notification envelope.
func NewNotification(method string, params any) (*Envelope, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, err
	}
	return &Envelope{JSONRPC: JSONRPCVersion, Method: method, Params: raw}, nil
}

// NewResponse builds a success response echoing the request id verbatim.
func NewResponse(id json.RawMessage, result any) (*Envelope, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, &CodecError{Type: CodecErrorTypeShape, Message: err.Error()}
	}
	return &Envelope{JSONRPC: JSONRPCVersion, ID: id, Result: raw}, nil
}

// NewErrorResponse builds an error response echoing the request id verbatim.
func NewErrorResponse(id json.RawMessage, code int, message string) *Envelope {
	return &Envelope{JSONRPC: JSONRPCVersion, ID: id, Error: NewError(code, message)}
}

func marshalParams(params any) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, &CodecError{Type: CodecErrorTypeShape, Message: err.Error()}
	}
	return raw, nil
}

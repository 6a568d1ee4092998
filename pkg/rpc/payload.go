// Relay Core - WalletConnect relay client protocol library
// Copyright (C) 2026 relaycore contributors
//
// This file is part of Relay Core, licensed under the GNU LGPL v3 or later.
// See ../domain/identifiers.go for the full license notice.

package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/wctool/relaycore/pkg/domain"
)

// JSONRPCVersion is the only value a wire payload may carry in "jsonrpc".
const JSONRPCVersion = "2.0"

// Request batch-size bounds shared by subscribe/unsubscribe/fetch/receive.
const (
	MaxBatchSize = 500
	MinBatchSize = 1
)

// Request is a single JSON-RPC request frame.
type Request struct {
	ID      domain.MessageID `json:"id"`
	JSONRPC string           `json:"jsonrpc"`
	Method  Method           `json:"method"`
	Params  json.RawMessage  `json:"params"`
}

// SuccessfulResponse carries a request's result.
type SuccessfulResponse struct {
	ID      domain.MessageID `json:"id"`
	JSONRPC string           `json:"jsonrpc"`
	Result  json.RawMessage  `json:"result"`
}

// ErrorResponse carries a request's failure.
type ErrorResponse struct {
	ID      domain.MessageID `json:"id"`
	JSONRPC string           `json:"jsonrpc"`
	Error   ErrorData        `json:"error"`
}

// Response is the untagged success|error union; exactly one of Success or
// Err is non-nil after Decode.
type Response struct {
	Success *SuccessfulResponse
	Err     *ErrorResponse
}

// ID returns the correlating message id regardless of success/error shape.
func (r Response) ID() domain.MessageID {
	if r.Success != nil {
		return r.Success.ID
	}
	if r.Err != nil {
		return r.Err.ID
	}
	return 0
}

// Payload is the untagged request|response union received or sent over the
// wire.
type Payload struct {
	Request  *Request
	Response *Response
}

// NewRequest builds a Request with canonical jsonrpc version.
func NewRequest(id domain.MessageID, method Method, params interface{}) (*Request, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errSerializationFailed, err)
	}
	return &Request{ID: id, JSONRPC: JSONRPCVersion, Method: method, Params: raw}, nil
}

var errSerializationFailed = &Error{Payload: PayloadSerialization}

// Validate checks the structural invariants from the component design: the
// jsonrpc version string and the minimum message id. Params are not
// inspected here; each params type carries its own Validate method.
func (r *Request) Validate() *Error {
	if r.JSONRPC != JSONRPCVersion {
		return &Error{Payload: PayloadInvalidJSONRPCVersion}
	}
	if r.ID < domain.MinValidMessageID {
		return &Error{Payload: PayloadInvalidRequestID}
	}
	if _, ok := NormalizeMethod(string(r.Method)); !ok {
		return &Error{Payload: PayloadInvalidMethod}
	}
	return nil
}

// ValidateBatchSize enforces the [1,500] bound shared by every batch
// operation.
func ValidateBatchSize(n int) *Error {
	if n == 0 {
		return &Error{Payload: PayloadBatchEmpty}
	}
	if n > MaxBatchSize {
		return &Error{Payload: PayloadBatchLimitExceeded}
	}
	return nil
}

// ValidateTopicHex checks that a topic field decodes to 32 bytes, returning
// PayloadInvalidTopic on failure.
func ValidateTopicHex(hexStr string) *Error {
	if _, err := domain.ParseTopic(hexStr); err != nil {
		return &Error{Payload: PayloadInvalidTopic}
	}
	return nil
}

// DecodePayload parses a raw wire frame into a Payload, classifying it as a
// Request or a Response by presence of "method" vs "result"/"error".
func DecodePayload(raw []byte) (*Payload, error) {
	var probe struct {
		Method *Method          `json:"method"`
		Result *json.RawMessage `json:"result"`
		Error  *json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, &Error{Payload: PayloadSerialization}
	}

	if probe.Method != nil {
		var req Request
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, &Error{Payload: PayloadSerialization}
		}
		return &Payload{Request: &req}, nil
	}

	if probe.Result != nil {
		var resp SuccessfulResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, &Error{Payload: PayloadSerialization}
		}
		return &Payload{Response: &Response{Success: &resp}}, nil
	}

	if probe.Error != nil {
		var resp ErrorResponse
		if err := json.Unmarshal(raw, &resp); err != nil {
			return nil, &Error{Payload: PayloadSerialization}
		}
		return &Payload{Response: &Response{Err: &resp}}, nil
	}

	return nil, &Error{Payload: PayloadSerialization}
}

// Encode serializes the payload back to its wire JSON form.
func (p *Payload) Encode() ([]byte, error) {
	switch {
	case p.Request != nil:
		return json.Marshal(p.Request)
	case p.Response != nil && p.Response.Success != nil:
		return json.Marshal(p.Response.Success)
	case p.Response != nil && p.Response.Err != nil:
		return json.Marshal(p.Response.Err)
	default:
		return nil, fmt.Errorf("rpc: empty payload")
	}
}

// NewSuccessResponse builds a successful response frame.
func NewSuccessResponse(id domain.MessageID, result interface{}) (*Response, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &Response{Success: &SuccessfulResponse{ID: id, JSONRPC: JSONRPCVersion, Result: raw}}, nil
}

// NewErrorResponse builds an error response frame from a typed Error.
func NewErrorResponse(id domain.MessageID, err *Error) *Response {
	return &Response{Err: &ErrorResponse{ID: id, JSONRPC: JSONRPCVersion, Error: err.Data()}}
}

package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is bumped when the envelope structure changes so clients
// can detect incompatible responses.
const envelopeVersion = 1

// Envelope is the consistent JSON wrapper around every API response.
type Envelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every response body in an Envelope.
// Registered as a huma response transformer.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	code, _ := strconv.Atoi(status)
	success := code < 400

	if apiErr, ok := v.(*APIError); ok {
		env := Envelope{
			V:       envelopeVersion,
			Success: false,
		}
		if apiErr.Code == "" {
			env.Error = apiErr.Message
		} else {
			env.Code = apiErr.Code
			env.Message = apiErr.Message
			env.Details = apiErr.Details
		}
		return env, nil
	}

	if !success {
		if err, ok := v.(error); ok {
			return Envelope{
				V:       envelopeVersion,
				Success: false,
				Error:   err.Error(),
			}, nil
		}
	}

	return Envelope{
		V:       envelopeVersion,
		Success: success,
		Data:    v,
	}, nil
}

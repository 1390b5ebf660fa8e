package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5/middleware"
)

// EnvelopeVersion is bumped when the envelope shape changes.
const EnvelopeVersion = 1

// Envelope is the body of every JSON response.
//
// Success bodies carry Data. Plain failures carry Error; coded failures
// carry Code, Message and optional Details instead.
type Envelope struct {
	Version   int    `json:"v"`
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// EnvelopeTransformer is a huma transformer that wraps response bodies.
func EnvelopeTransformer(ctx huma.Context, status string, v any) (any, error) {
	env := Envelope{Version: EnvelopeVersion}
	if ctx != nil {
		env.RequestID = middleware.GetReqID(ctx.Context())
	}

	if code, err := strconv.Atoi(status); err != nil || code < 400 {
		env.Success = true
		env.Data = v
		return env, nil
	}

	switch e := v.(type) {
	case *APIError:
		if e.Code == "" && e.Details == nil {
			env.Error = e.Message
			break
		}
		env.Code = e.Code
		env.Message = e.Message
		env.Details = e.Details
	case error:
		env.Error = e.Error()
	default:
		env.Data = v
	}
	return env, nil
}

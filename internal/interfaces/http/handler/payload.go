package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	appcollection "github.com/callbridge/backend/internal/application/collection"
	"github.com/callbridge/backend/internal/domain/shared"
	"github.com/xeipuuv/gojsonschema"
)

// Fault texts for payloads rejected before they reach the engine
const (
	msgMalformedBody = "Malformed request body"
	msgInvalidJSON   = "Request body is not valid JSON"
)

// maxSchemaErrors bounds how many schema violations are reported
const maxSchemaErrors = 5

// outcomeSchema constrains the shape of a post-call payload. Field values
// are checked by the engine; this only rejects structures the engine cannot
// read, such as a section that is not an object.
const outcomeSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "definitions": {
    "scalar": {"type": ["string", "number", "boolean", "null"]}
  },
  "properties": {
    "user_info": {
      "type": ["object", "null"],
      "properties": {
        "account_number": {"$ref": "#/definitions/scalar"}
      }
    },
    "outcome_details": {
      "type": ["object", "null"],
      "properties": {
        "final_disposition": {"$ref": "#/definitions/scalar"},
        "contact_type": {"$ref": "#/definitions/scalar"},
        "user_agreed_payment_amount": {"$ref": "#/definitions/scalar"},
        "pay_later_date": {"$ref": "#/definitions/scalar"},
        "call_type": {"$ref": "#/definitions/scalar"},
        "call_duration": {"$ref": "#/definitions/scalar"},
        "call_identifier": {"$ref": "#/definitions/scalar"},
        "call_end_status": {"$ref": "#/definitions/scalar"},
        "disposition_trace": {
          "type": ["array", "null"],
          "items": {"$ref": "#/definitions/scalar"}
        },
        "dialing_status": {
          "type": ["object", "null"],
          "properties": {
            "long_code": {"$ref": "#/definitions/scalar"},
            "short_code": {"$ref": "#/definitions/scalar"},
            "details": {"$ref": "#/definitions/scalar"}
          }
        }
      }
    },
    "metadata": {
      "type": ["object", "null"],
      "properties": {
        "creation_date": {"$ref": "#/definitions/scalar"},
        "notes": {"$ref": "#/definitions/scalar"}
      }
    },
    "call_outcome_note": {"$ref": "#/definitions/scalar"}
  }
}`

// PayloadDecoder turns a raw post-call body into an engine request
type PayloadDecoder struct {
	schema *gojsonschema.Schema
}

// NewPayloadDecoder compiles the post-call payload schema
func NewPayloadDecoder() (*PayloadDecoder, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(outcomeSchema))
	if err != nil {
		return nil, fmt.Errorf("compile post-call schema: %w", err)
	}
	return &PayloadDecoder{schema: schema}, nil
}

// Decode validates and parses body. An empty body, null or {} decodes to a
// nil request, which the engine rejects as carrying no data.
func (d *PayloadDecoder) Decode(body []byte) (*appcollection.PostCallOutcomeRequest, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}
	if !json.Valid(body) {
		return nil, shared.NewValidationFault(msgInvalidJSON).WithSummary(msgMalformedBody)
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err == nil && len(probe) == 0 {
		return nil, nil
	}

	result, err := d.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, shared.NewValidationFault(msgInvalidJSON).WithSummary(msgMalformedBody)
	}
	if !result.Valid() {
		return nil, shared.NewValidationFault(describeSchemaErrors(result.Errors())).WithSummary(msgMalformedBody)
	}

	var req appcollection.PostCallOutcomeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, shared.NewValidationFault("Invalid payload: " + err.Error()).WithSummary(msgMalformedBody)
	}
	return &req, nil
}

func describeSchemaErrors(errs []gojsonschema.ResultError) string {
	parts := make([]string, 0, min(len(errs), maxSchemaErrors))
	for i, e := range errs {
		if i == maxSchemaErrors {
			break
		}
		parts = append(parts, e.Field()+": "+e.Description())
	}
	return "Invalid payload: " + strings.Join(parts, "; ")
}

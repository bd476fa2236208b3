package itembank

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/abhisek/thetacat/internal/irt"
)

const responseSetSchemaURL = "schema://response-set.json"

// responseSetSchema describes a scored response vector. Each response names
// either a bank item or inline 3PL parameters, never both.
const responseSetSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["responses"],
  "additionalProperties": false,
  "properties": {
    "examinee_id": {"type": "string"},
    "precision": {"type": "integer", "minimum": 1, "maximum": 15},
    "responses": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["correct"],
        "additionalProperties": false,
        "properties": {
          "item_id": {"type": "string", "minLength": 1},
          "a": {"type": "number"},
          "b": {"type": "number"},
          "c": {"type": "number", "minimum": 0, "maximum": 1},
          "correct": {"type": "boolean"}
        },
        "oneOf": [
          {
            "required": ["item_id"],
            "not": {"anyOf": [{"required": ["a"]}, {"required": ["b"]}, {"required": ["c"]}]}
          },
          {
            "required": ["a", "b", "c"],
            "not": {"required": ["item_id"]}
          }
        ]
      }
    }
  }
}`

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// InvalidResponseSetError indicates a response set that does not conform to
// the response-set schema.
type InvalidResponseSetError struct {
	Err error
}

func (e *InvalidResponseSetError) Error() string {
	return fmt.Sprintf("invalid response set: %v", e.Err)
}

func (e *InvalidResponseSetError) Unwrap() error { return e.Err }

// Response is one scored item response.
type Response struct {
	ItemID  string   `json:"item_id,omitempty"`
	A       *float64 `json:"a,omitempty"`
	B       *float64 `json:"b,omitempty"`
	C       *float64 `json:"c,omitempty"`
	Correct bool     `json:"correct"`
}

// ResponseSet is a test-taker's responses to administered items.
type ResponseSet struct {
	ExamineeID string     `json:"examinee_id,omitempty"`
	Precision  int        `json:"precision,omitempty"`
	Responses  []Response `json:"responses"`
}

// Resolver maps bank item IDs to parameters, preserving order.
type Resolver interface {
	Resolve(ids []string) (irt.Items, error)
}

// ParseResponseSet validates raw JSON against the response-set schema and
// decodes it.
func ParseResponseSet(raw []byte) (*ResponseSet, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &InvalidResponseSetError{Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	sch, err := responseSchema()
	if err != nil {
		return nil, fmt.Errorf("compile response-set schema: %w", err)
	}
	if err := sch.Validate(parsed); err != nil {
		return nil, &InvalidResponseSetError{Err: err}
	}

	var rs ResponseSet
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, &InvalidResponseSetError{Err: err}
	}
	return &rs, nil
}

// Vector returns the responses as 0/1 values.
func (rs *ResponseSet) Vector() []int {
	out := make([]int, len(rs.Responses))
	for i, r := range rs.Responses {
		if r.Correct {
			out[i] = 1
		}
	}
	return out
}

// Items returns the item parameters aligned with Vector. Bank references are
// looked up through r in a single call; r may be nil when every response
// carries inline parameters.
func (rs *ResponseSet) Items(r Resolver) (irt.Items, error) {
	var ids []string
	for _, resp := range rs.Responses {
		if resp.ItemID != "" {
			ids = append(ids, resp.ItemID)
		}
	}

	var banked irt.Items
	if len(ids) > 0 {
		if r == nil {
			return nil, fmt.Errorf("resolve %s: no item bank: %w", strings.Join(ids, ","), ErrItemNotFound)
		}
		var err error
		banked, err = r.Resolve(ids)
		if err != nil {
			return nil, err
		}
	}

	items := make(irt.Items, len(rs.Responses))
	next := 0
	for i, resp := range rs.Responses {
		if resp.ItemID != "" {
			items[i] = banked[next]
			next++
			continue
		}
		if resp.A == nil || resp.B == nil || resp.C == nil {
			return nil, &InvalidResponseSetError{Err: fmt.Errorf("response %d: missing item parameters", i)}
		}
		items[i] = irt.Item{A: *resp.A, B: *resp.B, C: *resp.C}
	}
	return items, nil
}

func responseSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(responseSetSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(responseSetSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(responseSetSchemaURL)
	})
	return compiledSchema, compileErr
}

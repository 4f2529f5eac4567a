package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// compiledSchemas holds compiled response schemas by Schema.Name.
var compiledSchemas sync.Map

// ValidatingProvider rejects structured replies that do not match the
// request's schema with *ErrInvalidResponse, which the retry decorator
// retries once.
type ValidatingProvider struct {
	inner Provider
}

// WithValidation wraps p so every reply to a request with a Schema is
// checked against it.
func WithValidation(p Provider) Provider {
	return &ValidatingProvider{inner: p}
}

func (v *ValidatingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	resp, err := v.inner.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := req.Schema.validate(resp.Content); err != nil {
		return nil, err
	}
	return resp, nil
}

func (v *ValidatingProvider) ModelID() string { return v.inner.ModelID() }

// validate checks raw against s. A nil schema accepts anything.
func (s *Schema) validate(raw json.RawMessage) error {
	if s == nil {
		return nil
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("reply is not JSON: %w", err)}
	}
	compiled, err := s.compile()
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}
	if err := compiled.Validate(doc); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("reply does not match %s: %w", s.Name, err)}
	}
	return nil
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	if c, ok := compiledSchemas.Load(s.Name); ok {
		return c.(*jsonschema.Schema), nil
	}
	// The compiler wants decoded JSON, not Go maps holding typed slices.
	def, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("encode schema %s: %w", s.Name, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(def))
	if err != nil {
		return nil, fmt.Errorf("decode schema %s: %w", s.Name, err)
	}
	url := "schema://orbit/llm/" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", s.Name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", s.Name, err)
	}
	compiledSchemas.Store(s.Name, compiled)
	return compiled, nil
}

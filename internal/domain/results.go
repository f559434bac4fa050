package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ResultCatalog is the ordered set of results of a quiz. Order is the
// order results were supplied in and decides ties during resolution.
//
// On the wire it is a JSON object keyed by result key; member order is
// preserved in both directions.
type ResultCatalog []ResultDefinition

// resultBody is a result without its key, which lives in the object member name.
type resultBody struct {
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	CallToAction   *CallToAction   `json:"callToAction,omitempty"`
	SecondaryOffer *SecondaryOffer `json:"secondaryOffer,omitempty"`
}

// Keys returns the result keys in catalog order.
func (c ResultCatalog) Keys() []ResultKey {
	keys := make([]ResultKey, len(c))
	for i, r := range c {
		keys[i] = r.Key
	}
	return keys
}

// Lookup finds a result by key.
func (c ResultCatalog) Lookup(key ResultKey) (ResultDefinition, bool) {
	for _, r := range c {
		if r.Key == key {
			return r, true
		}
	}
	return ResultDefinition{}, false
}

func (c ResultCatalog) MarshalJSON() ([]byte, error) {
	if c == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(r.Key))
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(resultBody{
			Title:          r.Title,
			Description:    r.Description,
			CallToAction:   r.CallToAction,
			SecondaryOffer: r.SecondaryOffer,
		})
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *ResultCatalog) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("results: %w", err)
	}
	if tok == nil {
		*c = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("results: expected object, got %v", tok)
	}

	out := ResultCatalog{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("results: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("results: expected key, got %v", keyTok)
		}
		var body resultBody
		if err := dec.Decode(&body); err != nil {
			return fmt.Errorf("results[%s]: %w", key, err)
		}
		out = append(out, ResultDefinition{
			Key:            ResultKey(key),
			Title:          body.Title,
			Description:    body.Description,
			CallToAction:   body.CallToAction,
			SecondaryOffer: body.SecondaryOffer,
		})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("results: %w", err)
	}
	*c = out
	return nil
}

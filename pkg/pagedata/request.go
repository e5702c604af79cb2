package pagedata

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Request fields consumed by the controller.
const (
	FieldReady                 = "vcv-ready"
	FieldUpdatePost            = "vcv-updatePost"
	FieldData                  = "vcv-data"
	FieldContent               = "vcv-content"
	FieldDesignOptions         = "vcv-settings-page-design-options"
	FieldDesignOptionsCompiled = "vcv-settings-page-design-options-compiled"
	FieldSourceID              = "vcv-source-id"
	FieldAction                = "vcv-action"
)

// Request gives read access to the fields of the current request.
type Request interface {
	// Input returns the field value or the empty string
	Input(key string) string
	// Exists reports whether the field was sent
	Exists(key string) bool
}

// Values is a Request backed by a plain map.
type Values map[string]string

// Input implements Request.
func (v Values) Input(key string) string { return v[key] }

// Exists implements Request.
func (v Values) Exists(key string) bool {
	_, ok := v[key]
	return ok
}

type formRequest struct {
	form url.Values
}

// NewFormRequest wraps parsed form values.
func NewFormRequest(form url.Values) Request {
	if form == nil {
		form = url.Values{}
	}
	return &formRequest{form: form}
}

func (r *formRequest) Input(key string) string { return r.form.Get(key) }

func (r *formRequest) Exists(key string) bool {
	_, ok := r.form[key]
	return ok
}

// InputJSON decodes a JSON object field. Editors may send the object
// URL-encoded; both forms are accepted. A missing or empty field decodes to
// an empty map.
func InputJSON(req Request, key string) (map[string]json.RawMessage, error) {
	raw := strings.TrimSpace(req.Input(key))
	out := map[string]json.RawMessage{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err == nil {
		return out, nil
	}
	unescaped, err := url.QueryUnescape(raw)
	if err != nil {
		return nil, fmt.Errorf("field %s is not JSON: %w", key, err)
	}
	out = map[string]json.RawMessage{}
	if err := json.Unmarshal([]byte(unescaped), &out); err != nil {
		return nil, fmt.Errorf("field %s is not JSON: %w", key, err)
	}
	return out, nil
}

// isSet reports whether key is present with a non-null value.
func isSet(m map[string]json.RawMessage, key string) bool {
	v, ok := m[key]
	if !ok {
		return false
	}
	return strings.TrimSpace(string(v)) != "null"
}

// rawURLEncode percent-encodes s per RFC 3986, leaving only unreserved
// characters intact.
func rawURLEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

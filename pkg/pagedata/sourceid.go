package pagedata

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SourceID identifies the post a save targets. It is either Direct, a bare
// identifier subject to the edit capability check, or Checked, a record
// produced by an extension that may waive the check.
type SourceID interface {
	// Resolve returns the numeric post id and whether access must be checked.
	// ok is false when the source does not name a numeric post.
	Resolve() (id int64, accessCheck bool, ok bool)
}

// Direct is a bare post identifier as posted by the editor.
type Direct struct {
	ID string
}

// Resolve implements SourceID.
func (d Direct) Resolve() (int64, bool, bool) {
	id, ok := parseNumericID(d.ID)
	return id, true, ok
}

// Checked is a structured source record. Only records with Status true name
// a post; AccessCheck defaults to true.
type Checked struct {
	Status      bool
	ID          string
	AccessCheck bool
}

// NewChecked returns a resolvable Checked record with the access check enabled.
func NewChecked(id int64) Checked {
	return Checked{Status: true, ID: strconv.FormatInt(id, 10), AccessCheck: true}
}

// Resolve implements SourceID.
func (c Checked) Resolve() (int64, bool, bool) {
	if !c.Status {
		return 0, true, false
	}
	id, ok := parseNumericID(c.ID)
	return id, c.AccessCheck, ok
}

// ParseSourceID converts a payload value into a SourceID. Maps become
// Checked records, everything else a Direct identifier.
func ParseSourceID(v interface{}) SourceID {
	switch t := v.(type) {
	case SourceID:
		return t
	case map[string]interface{}:
		return checkedFromMap(t)
	case Payload:
		return checkedFromMap(t)
	case nil:
		return Direct{}
	default:
		return Direct{ID: scalarString(t)}
	}
}

func checkedFromMap(m map[string]interface{}) Checked {
	c := Checked{AccessCheck: true}
	if s, ok := m["status"].(bool); ok {
		c.Status = s
	}
	if raw, ok := m["sourceId"]; ok {
		c.ID = scalarString(raw)
	}
	if ac, ok := m["accessCheck"]; ok {
		c.AccessCheck = truthy(ac)
	}
	return c
}

func scalarString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case bool, nil:
		return ""
	default:
		// Structured values never name a post
		return fmt.Sprintf("%T", t)
	}
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != "" && t != "0" && t != "false"
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case nil:
		return false
	}
	return true
}

// parseNumericID accepts integers and integral or fractional decimal
// strings; fractions are truncated. Non-positive ids do not name a post.
func parseNumericID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, id > 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt64 {
		return 0, false
	}
	id := int64(f)
	return id, id > 0
}

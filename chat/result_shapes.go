package chat

import (
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ShapeFunc narrows a raw JSON plan result to the fields worth spending
// prompt tokens on. It receives the full payload and returns the reshaped
// JSON; returning an error leaves the payload untouched.
type ShapeFunc func(raw string) (string, error)

// ResultShapes maps skill names to response-narrowing functions. The skill
// that produced a plan's final step selects which shape applies; skills
// without a registered shape pass their payload through unchanged.
type ResultShapes struct {
	mu     sync.RWMutex
	shapes map[string]ShapeFunc
}

// NewResultShapes constructs an empty shape registry.
func NewResultShapes() *ResultShapes {
	return &ResultShapes{shapes: make(map[string]ShapeFunc)}
}

// Register associates a shape with a skill name. Lookup is case-insensitive.
func (r *ResultShapes) Register(skill string, fn ShapeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shapes[strings.ToLower(skill)] = fn
}

// Lookup returns the shape registered for a skill, if any.
func (r *ResultShapes) Lookup(skill string) (ShapeFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.shapes[strings.ToLower(skill)]
	return fn, ok
}

// FieldProjection builds a ShapeFunc keeping only the named top-level
// fields. Arrays are projected element-wise; fields absent from the payload
// are skipped.
func FieldProjection(fields ...string) ShapeFunc {
	return func(raw string) (string, error) {
		parsed := gjson.Parse(raw)
		if parsed.IsArray() {
			out := "[]"
			for _, item := range parsed.Array() {
				projected, err := projectFields(item, fields)
				if err != nil {
					return "", err
				}
				out, err = sjson.SetRaw(out, "-1", projected)
				if err != nil {
					return "", err
				}
			}
			return out, nil
		}
		return projectFields(parsed, fields)
	}
}

func projectFields(value gjson.Result, fields []string) (string, error) {
	out := "{}"
	for _, field := range fields {
		v := value.Get(escapeJSONPath(field))
		if !v.Exists() {
			continue
		}
		var err error
		out, err = sjson.SetRaw(out, escapeJSONPath(field), v.Raw)
		if err != nil {
			return "", err
		}
	}
	return out, nil
}

// escapeJSONPath quotes path metacharacters so a literal key name is never
// interpreted as a wildcard or nested path.
func escapeJSONPath(key string) string {
	var sb strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '\\', '|', '#', '@':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

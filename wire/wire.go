// Package wire implements the control wire format: a settings string
// accepted in either of two forms, distinguished solely by the shape of
// its first and last character ('{'...'}' is JSON, anything else is a
// query string of key=value pairs joined by '&'), plus the REST
// response envelope and method→code map used by the optional HTTP
// adapter in package restapi.
//
// Parsing is a thin stdlib binding (net/url for the query-string
// grammar, encoding/json for the object grammar) rather than a
// hand-rolled parser, since the grammar itself is exactly what those
// two stdlib packages already parse.
package wire

import (
	"encoding/json"
	"net/url"
	"strings"
)

// IsJSON reports whether s is the JSON-object form of a settings string,
// by full first/last character equality, not prefix matching.
func IsJSON(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")
}

// ParseSettings parses s as a flat key=value query string. It is only
// meaningful when IsJSON(s) is false.
func ParseSettings(s string) (map[string]string, error) {
	vals, err := url.ParseQuery(s)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(vals))
	for k, v := range vals {
		if len(v) > 0 {
			out[k] = v[len(v)-1]
		}
	}
	return out, nil
}

// ParseSettingsJSON parses s as a JSON object. It is only meaningful
// when IsJSON(s) is true.
func ParseSettingsJSON(s string) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ParseAny parses s using whichever of the two forms its shape selects,
// always returning a string-keyed map of strings (in the JSON form, a
// string value is kept as is and any other value is replaced by its JSON
// text, so 1000 becomes "1000"; callers that need the original JSON
// value types should call ParseSettingsJSON directly when IsJSON(s)).
func ParseAny(s string) (map[string]string, error) {
	if IsJSON(s) {
		obj, err := ParseSettingsJSON(s)
		if err != nil {
			return nil, err
		}
		out := make(map[string]string, len(obj))
		for k, v := range obj {
			out[k] = toString(v)
		}
		return out, nil
	}
	return ParseSettings(s)
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

// Field extracts a single named field from a settings string, regardless
// of which of the two wire forms it is written in. It is used for both
// POST's forced_proc_id and PUT's proc_name, since both accept the same
// dual-form rule as ordinary settings fields.
func Field(settingsStr, name string) (string, bool) {
	m, err := ParseAny(settingsStr)
	if err != nil {
		return "", false
	}
	v, ok := m[name]
	return v, ok
}

// MergeTop returns a shallow copy of tree with key inserted. Seeing key
// first among the marshaled object's keys is not guaranteed by
// encoding/json, which always sorts object keys alphabetically;
// MergeTop's actual contract is only that key is present at the top
// level.
func MergeTop(tree map[string]interface{}, key string, val interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(tree)+1)
	out[key] = val
	for k, v := range tree {
		out[k] = v
	}
	return out
}

package sqlguard

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidParam matches every *InvalidParamError via errors.Is.
var ErrInvalidParam = errors.New("invalid param")

// InvalidParamError reports a --param entry that is not KEY=VALUE.
type InvalidParamError struct {
	Item string
}

func (e *InvalidParamError) Error() string {
	return fmt.Sprintf("Invalid --param value: %s. Use KEY=VALUE.", e.Item)
}

// Is makes errors.Is(err, ErrInvalidParam) true.
func (e *InvalidParamError) Is(target error) bool {
	return target == ErrInvalidParam
}

// Param is a single substitution.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered set of substitutions. Keys are unique.
type Params []Param

// Get returns the value for key.
func (p Params) Get(key string) (string, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}
	return "", false
}

// ParseParams parses KEY=VALUE pairs. The key is trimmed, the value is kept
// verbatim, and a repeated key overwrites the earlier value in place.
func ParseParams(pairs []string) (Params, error) {
	params := make(Params, 0, len(pairs))
	index := make(map[string]int, len(pairs))

	for _, item := range pairs {
		key, value, ok := strings.Cut(item, "=")
		if !ok {
			return nil, &InvalidParamError{Item: item}
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, &InvalidParamError{Item: item}
		}

		if i, seen := index[key]; seen {
			params[i].Value = value
			continue
		}
		index[key] = len(params)
		params = append(params, Param{Key: key, Value: value})
	}

	return params, nil
}

// ApplyParams replaces every {{KEY}} in sql with its value, in order.
// Values are inserted as plain text: no quoting and no awareness of literals
// or comments. Substitution must happen before the read-only check, since a
// value can change the statements the guard sees.
func ApplyParams(sql string, params Params) string {
	for _, p := range params {
		sql = strings.ReplaceAll(sql, "{{"+p.Key+"}}", p.Value)
	}
	return sql
}

// SPDX-License-Identifier: MIT
package method

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds the configuration of one method invocation. The shape is
// defined by each method; nil means "use defaults".
type Params map[string]any

// Clone returns a shallow copy of p. Nested values are shared.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	return maps.Clone(p)
}

// String renders p with sorted keys, e.g. "threshold=0.1 window=256".
// A nil map renders as "default".
func (p Params) String() string {
	if p == nil {
		return "default"
	}
	if len(p) == 0 {
		return "{}"
	}

	keys := slices.Sorted(maps.Keys(p))
	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%s=%v", k, p[k])
	}
	return sb.String()
}

// DecodeParams decodes params into out, a pointer to a struct tagged with
// `mapstructure`. Fields of out keep their values when params is nil or a key
// is absent, so callers pre-fill out with defaults. Unknown keys and values
// of the wrong type are rejected with ErrInvalidParams.
func DecodeParams(params Params, out any) error {
	if params == nil {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	if err := decoder.Decode(map[string]any(params)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

// InvalidParamsf formats an ErrInvalidParams error.
func InvalidParamsf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParams, fmt.Sprintf(format, args...))
}

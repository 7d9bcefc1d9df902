// Package identity implements the provider-specific attribute extraction
// behind federation: each extractor lowers one OAuth2 provider's verified
// payload into the canonical profile shape consumed by the reconciler.
package identity

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/goliatone/go-authkit/core"
)

const defaultDisplayName = "Unknown"

// DefaultExtractors returns one extractor per supported provider.
func DefaultExtractors() []core.ProfileExtractor {
	return []core.ProfileExtractor{
		GoogleExtractor{},
		KakaoExtractor{},
	}
}

func readString(attrs map[string]any, key string) string {
	if len(attrs) == 0 {
		return ""
	}
	value, ok := attrs[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

func readMap(attrs map[string]any, key string) map[string]any {
	if len(attrs) == 0 {
		return nil
	}
	value, ok := attrs[key].(map[string]any)
	if !ok {
		return nil
	}
	return value
}

// stringifyID renders a provider subject identifier that may arrive as a
// string, a JSON number (float64 after generic decoding), or an integer.
func stringifyID(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(typed)
	case json.Number:
		return typed.String()
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	default:
		return ""
	}
}

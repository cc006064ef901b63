package cabme

import (
	"fmt"
	"math"
)

// protocolCandidates are the field names tried, in order, when hunting for
// the confirmation identifier in a create-order response.
var protocolCandidates = []string{"protocol", "protocolo", "id", "requestId", "bookingId"}

// nestedContainers are the wrapper objects searched one level deep, "data"
// first. Recursion stops there.
var nestedContainers = []string{"data", "result", "response", "order"}

// ExtractProtocol hunts for the order confirmation identifier in a decoded
// response body. Each candidate field is tried at the top level, then one
// level down inside the known wrapper objects. Numbers are stringified;
// the first non-empty string wins. Returns "" when nothing matches.
func ExtractProtocol(body map[string]interface{}) string {
	for _, field := range protocolCandidates {
		if v := stringify(body[field]); v != "" {
			return v
		}
	}
	for _, container := range nestedContainers {
		nested, ok := body[container].(map[string]interface{})
		if !ok {
			continue
		}
		for _, field := range protocolCandidates {
			if v := stringify(nested[field]); v != "" {
				return v
			}
		}
	}
	return ""
}

func firstString(body map[string]interface{}, field string) string {
	if v := stringify(body[field]); v != "" {
		return v
	}
	for _, container := range nestedContainers {
		if nested, ok := body[container].(map[string]interface{}); ok {
			if v := stringify(nested[field]); v != "" {
				return v
			}
		}
	}
	return ""
}

func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == math.Trunc(val) {
			return fmt.Sprintf("%.0f", val)
		}
		return fmt.Sprintf("%v", val)
	default:
		return ""
	}
}

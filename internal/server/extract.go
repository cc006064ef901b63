package server

// Incoming is the normalized view of a channel webhook payload. The channel
// emits several payload shapes depending on message type and version, so
// each field is resolved through an ordered alias list.
type Incoming struct {
	Number      string
	Message     string
	ExternalKey string
}

// ExtractIncoming pulls number, message and external key out of a decoded
// webhook body. Missing fields come back empty; the caller decides which
// ones are mandatory.
func ExtractIncoming(body map[string]interface{}) Incoming {
	return Incoming{
		Number: firstNonEmpty(
			asString(body["number"]),
			asString(body["phone"]),
			asString(body["from"]),
			nestedString(body, "sender", "phone"),
			nestedString(body, "contact", "phone"),
		),
		Message: firstNonEmpty(
			asString(body["message"]),
			asString(body["text"]),
			nestedString(body, "text", "message"),
			asString(body["body"]),
			firstElementString(body, "messages", "text", "body"),
			firstElementString(body, "messages", "body"),
		),
		ExternalKey: firstNonEmpty(
			asString(body["externalKey"]),
			asString(body["external_key"]),
			asString(body["ticketId"]),
			asString(body["id"]),
			asString(body["messageId"]),
		),
	}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func nestedString(body map[string]interface{}, container, field string) string {
	nested, ok := body[container].(map[string]interface{})
	if !ok {
		return ""
	}
	return asString(nested[field])
}

// firstElementString resolves a field path inside the first element of an
// array field, e.g. messages[0].text.body.
func firstElementString(body map[string]interface{}, container string, path ...string) string {
	list, ok := body[container].([]interface{})
	if !ok || len(list) == 0 {
		return ""
	}
	current, ok := list[0].(map[string]interface{})
	if !ok {
		return ""
	}
	for i, field := range path {
		if i == len(path)-1 {
			return asString(current[field])
		}
		current, ok = current[field].(map[string]interface{})
		if !ok {
			return ""
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

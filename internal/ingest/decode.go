package ingest

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/kpauljoseph/ankiforge/pkg/models"
)

var (
	errInvalidJSON  = eris.New("ingest: not valid JSON")
	errUnknownShape = eris.New("ingest: JSON has no card-shaped content")
)

// decodeCards parses a JSON document into cards. Accepted shapes are an array
// of card objects, a single card object with front and back, or an object
// whose first array-valued property (in document order) holds the cards.
// Cards without a usable tags array get defaultTags.
func decodeCards(doc string, defaultTags []string) ([]models.Flashcard, error) {
	data := []byte(strings.TrimSpace(doc))
	if len(data) == 0 || !json.Valid(data) {
		return nil, errInvalidJSON
	}

	var elems []json.RawMessage
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &elems); err != nil {
			return nil, eris.Wrap(err, "ingest: decode array")
		}
	case '{':
		if isCardObject(data) {
			elems = []json.RawMessage{data}
			break
		}
		arr, ok := firstArrayProperty(data)
		if !ok {
			return nil, errUnknownShape
		}
		if err := json.Unmarshal(arr, &elems); err != nil {
			return nil, eris.Wrap(err, "ingest: decode nested array")
		}
	default:
		return nil, errUnknownShape
	}

	cards := make([]models.Flashcard, 0, len(elems))
	for _, elem := range elems {
		cards = append(cards, coerceCard(elem, defaultTags))
	}
	return cards, nil
}

func isCardObject(data []byte) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return false
	}
	_, hasFront := obj["front"]
	_, hasBack := obj["back"]
	return hasFront && hasBack
}

func allObjects(elems []json.RawMessage) bool {
	for _, elem := range elems {
		if v := bytes.TrimSpace(elem); len(v) == 0 || v[0] != '{' {
			return false
		}
	}
	return len(elems) > 0
}

// firstArrayProperty walks the top-level object token by token so that
// properties are seen in the order the model wrote them.
func firstArrayProperty(data []byte) (json.RawMessage, bool) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil, false
	}

	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, false
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		if v := bytes.TrimSpace(value); len(v) > 0 && v[0] == '[' {
			return value, true
		}
	}
	return nil, false
}

// coerceCard never fails: missing or null sides become "", non-object
// elements become an empty card.
func coerceCard(raw json.RawMessage, defaultTags []string) models.Flashcard {
	var obj map[string]json.RawMessage
	_ = json.Unmarshal(raw, &obj)

	tags, ok := stringList(obj["tags"])
	if !ok {
		tags = defaultTags
	}

	return models.NewFlashcard(stringify(obj["front"]), stringify(obj["back"]), tags...)
}

// stringify renders a JSON value as card text. Falsy scalars (null, false,
// 0, "") become the empty string; objects and arrays keep their compact JSON.
func stringify(raw json.RawMessage) string {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return ""
	}

	switch v[0] {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return ""
		}
		return s
	case 'n', 'f':
		return ""
	case 't':
		return "true"
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return string(v)
		}
		return buf.String()
	default:
		if f, err := strconv.ParseFloat(string(v), 64); err == nil && f == 0 {
			return ""
		}
		return string(v)
	}
}

func stringList(raw json.RawMessage) ([]string, bool) {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 || v[0] != '[' {
		return nil, false
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(v, &elems); err != nil {
		return nil, false
	}

	out := make([]string, 0, len(elems))
	for _, elem := range elems {
		if s := tagString(elem); s != "" {
			out = append(out, s)
		}
	}
	return out, true
}

// unescapeJSONString decodes the body of a JSON string literal captured by a
// regex. Bodies that do not decode are returned as captured.
func unescapeJSONString(body string) string {
	var s string
	if err := json.Unmarshal([]byte(`"`+body+`"`), &s); err != nil {
		return body
	}
	return s
}

// tagString renders one tags element. Unlike card text, 0 and false are kept
// as "0" and "false"; only null and "" are dropped.
func tagString(raw json.RawMessage) string {
	v := bytes.TrimSpace(raw)
	if len(v) == 0 {
		return ""
	}

	switch v[0] {
	case '"', '{', '[':
		return stringify(v)
	case 'n':
		return ""
	default:
		return string(v)
	}
}

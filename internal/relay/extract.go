package relay

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

type nodeKind int

const (
	kindObject nodeKind = iota
	kindArray
	kindString
)

func (k nodeKind) String() string {
	switch k {
	case kindObject:
		return "object"
	case kindArray:
		return "array"
	default:
		return "string"
	}
}

type pathStep struct {
	key   string
	label string
	want  nodeKind
}

// replyPath is outputs[0].outputs[0].results.message.text.
var replyPath = []pathStep{
	{key: "outputs", label: "outputs", want: kindArray},
	{key: "0", label: "[0]", want: kindObject},
	{key: "outputs", label: ".outputs", want: kindArray},
	{key: "0", label: "[0]", want: kindObject},
	{key: "results", label: ".results", want: kindObject},
	{key: "message", label: ".message", want: kindObject},
	{key: "text", label: ".text", want: kindString},
}

// ExtractReply pulls the reply text out of a flow run response.
//
// The nested reply path wins when it is complete. A path that is present but has a node of the
// wrong JSON type is a parse error. When the path is absent, a top-level "result" field is used,
// and failing that FallbackReply.
func ExtractReply(payload []byte) (string, error) {
	if !gjson.ValidBytes(payload) {
		return "", parseError(errors.New("response body is not valid JSON"))
	}
	root := gjson.ParseBytes(payload)
	if !root.IsObject() {
		return FallbackReply, nil
	}

	text, found, err := resolveReplyPath(root)
	if err != nil {
		return "", parseError(err)
	}
	if found {
		return text, nil
	}

	if result := root.Get("result"); result.Exists() && result.Type != gjson.Null {
		return result.String(), nil
	}
	return FallbackReply, nil
}

func resolveReplyPath(root gjson.Result) (string, bool, error) {
	cur := root
	path := ""
	for _, step := range replyPath {
		next := cur.Get(step.key)
		path += step.label
		if !next.Exists() {
			return "", false, nil
		}
		if !hasKind(next, step.want) {
			return "", false, fmt.Errorf("%s is %s, want %s", path, describe(next), step.want)
		}
		cur = next
	}
	return cur.Str, true, nil
}

func hasKind(r gjson.Result, want nodeKind) bool {
	switch want {
	case kindObject:
		return r.IsObject()
	case kindArray:
		return r.IsArray()
	default:
		return r.Type == gjson.String
	}
}

func describe(r gjson.Result) string {
	switch {
	case r.IsObject():
		return "object"
	case r.IsArray():
		return "array"
	}
	switch r.Type {
	case gjson.String:
		return "string"
	case gjson.Number:
		return "number"
	case gjson.True, gjson.False:
		return "bool"
	default:
		return "null"
	}
}

package content

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Node kinds for the stored rich-text document tree. Text lives only in
// "text" leaves; every other kind carries children.
const (
	KindDocument       = "document"
	KindParagraph      = "paragraph"
	KindHeading        = "heading"
	KindList           = "list"
	KindListItem       = "list_item"
	KindCodeBlock      = "code_block"
	KindBlockquote     = "blockquote"
	KindHardBreak      = "hard_break"
	KindHorizontalRule = "horizontal_rule"
	KindText           = "text"
)

// Mark is presentation metadata on a text run (bold, italic, strike, code,
// link). Marks never affect flattened output.
type Mark struct {
	Type  string         `json:"type"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Node is one node of an immutable rich-text document. Entries store the
// root node as jsonb; edits create a new version rather than mutating.
type Node struct {
	Type    string         `json:"type"`
	Text    string         `json:"text,omitempty"`
	Marks   []Mark         `json:"marks,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
	Content []Node         `json:"content,omitempty"`
}

// ParseDocument decodes a stored rich-text document.
func ParseDocument(raw []byte) (Node, error) {
	var n Node
	if len(raw) == 0 {
		return n, fmt.Errorf("empty document")
	}
	if err := json.Unmarshal(raw, &n); err != nil {
		return n, fmt.Errorf("parse rich-text document: %w", err)
	}
	return n, nil
}

// Flatten converts entry content into plain text. It accepts a Node tree,
// raw jsonb bytes, an already-flat string, or anything else (best effort via
// fmt.Sprint). It never panics; absent content yields "".
func Flatten(input any) (out string) {
	defer func() {
		if r := recover(); r != nil {
			out = ""
		}
	}()

	switch v := input.(type) {
	case nil:
		return ""
	case string:
		return v
	case Node:
		return flattenNode(v)
	case *Node:
		if v == nil {
			return ""
		}
		return flattenNode(*v)
	case []byte:
		return flattenRaw(v)
	case json.RawMessage:
		return flattenRaw(v)
	case map[string]any:
		return flattenNode(nodeFromMap(v))
	default:
		return fmt.Sprint(v)
	}
}

func flattenRaw(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	n, err := ParseDocument(raw)
	if err != nil {
		// Not a document tree; jsonb may hold a bare string.
		var s string
		if json.Unmarshal(raw, &s) == nil {
			return s
		}
		return string(raw)
	}
	return flattenNode(n)
}

func nodeFromMap(m map[string]any) Node {
	raw, err := json.Marshal(m)
	if err != nil {
		return Node{}
	}
	var n Node
	if err := json.Unmarshal(raw, &n); err != nil {
		return Node{}
	}
	return n
}

func flattenNode(n Node) string {
	var b strings.Builder
	writeNode(&b, n)
	return b.String()
}

func writeNode(b *strings.Builder, n Node) {
	switch n.Type {
	case KindText:
		b.WriteString(n.Text)
	case KindParagraph, KindHeading:
		for _, child := range n.Content {
			writeNode(b, child)
		}
		b.WriteString("\n\n")
	case KindListItem:
		b.WriteString("- ")
		for _, child := range n.Content {
			writeNode(b, child)
		}
		b.WriteString("\n")
	case KindCodeBlock:
		b.WriteString("\n")
		for _, child := range n.Content {
			writeNode(b, child)
		}
		b.WriteString("\n")
	case KindHardBreak:
		b.WriteString("\n")
	case KindHorizontalRule:
		b.WriteString("\n\n")
	default:
		// Unknown kinds are transparent containers so new editor node types
		// degrade to their text instead of disappearing.
		for _, child := range n.Content {
			writeNode(b, child)
		}
	}
}

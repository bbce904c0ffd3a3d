package content

import (
	"strings"
	"testing"
)

func textNode(s string) Node { return Node{Type: KindText, Text: s} }

func TestFlattenDocumentTree(t *testing.T) {
	doc := Node{
		Type: KindDocument,
		Content: []Node{
			{Type: KindHeading, Attrs: map[string]any{"level": 2}, Content: []Node{textNode("Today")}},
			{Type: KindParagraph, Content: []Node{
				textNode("Felt "),
				{Type: KindText, Text: "good", Marks: []Mark{{Type: "bold"}}},
				textNode(" this morning."),
			}},
			{Type: KindList, Content: []Node{
				{Type: KindListItem, Content: []Node{textNode("walked")}},
				{Type: KindListItem, Content: []Node{textNode("read")}},
			}},
			{Type: KindCodeBlock, Attrs: map[string]any{"language": "text"}, Content: []Node{textNode("note to self")}},
		},
	}

	got := Flatten(doc)

	if !strings.Contains(got, "Today\n\n") {
		t.Fatalf("heading should end with paragraph break, got %q", got)
	}
	if !strings.Contains(got, "Felt good this morning.\n\n") {
		t.Fatalf("marks must not alter text output, got %q", got)
	}
	if !strings.Contains(got, "- walked\n- read\n") {
		t.Fatalf("list items should be bulleted with single breaks, got %q", got)
	}
	if !strings.Contains(got, "\nnote to self\n") {
		t.Fatalf("code block should keep block boundary, got %q", got)
	}
}

func TestFlattenDegradedInputs(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  string
	}{
		{"nil", nil, ""},
		{"plain string", "already flat", "already flat"},
		{"nil node pointer", (*Node)(nil), ""},
		{"empty bytes", []byte(nil), ""},
		{"non document json", []byte(`"just a string"`), "just a string"},
		{"number", 42, "42"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Flatten(tc.input); got != tc.want {
				t.Fatalf("Flatten(%v) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestFlattenUnknownKindIsTransparent(t *testing.T) {
	doc := Node{
		Type: "callout",
		Content: []Node{
			textNode("inner "),
			{Type: "future_widget", Content: []Node{textNode("text")}},
		},
	}
	if got := Flatten(doc); got != "inner text" {
		t.Fatalf("unknown kinds should concatenate children, got %q", got)
	}
}

func TestFlattenNeverPanics(t *testing.T) {
	inputs := []any{
		map[string]any{"type": "text", "content": "not a slice"},
		[]byte(`{"type":`),
		map[string]any{"type": []int{1, 2}},
		struct{ X chan int }{},
	}
	for _, in := range inputs {
		_ = Flatten(in) // must not panic
	}
}

func TestParseDocumentRoundTrip(t *testing.T) {
	raw := []byte(`{"type":"document","content":[{"type":"paragraph","content":[{"type":"text","text":"hi","marks":[{"type":"link","attrs":{"href":"https://example.com"}}]}]}]}`)
	n, err := ParseDocument(raw)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if got := Flatten(n); got != "hi\n\n" {
		t.Fatalf("flatten parsed doc: got %q", got)
	}
	if got := Flatten(raw); got != "hi\n\n" {
		t.Fatalf("flatten raw bytes: got %q", got)
	}
}

package content

import (
	"strings"
	"testing"
)

func TestStripTags(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<b>hi</b> there", "hi there"},
		{"<p>a</p><p>b</p>", "ab"},
		{`<a href="https://x.example">link</a>`, "link"},
		{"no markup at all", "no markup at all"},
		{"<!-- hidden -->visible", "visible"},
		{"a &amp; b", "a & b"},
		{"&lt;b&gt;encoded&lt;/b&gt;", "encoded"},
	}
	for _, tc := range cases {
		if got := StripTags(tc.in); got != tc.want {
			t.Fatalf("StripTags(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestStripTagsIdempotent(t *testing.T) {
	inputs := []string{
		"<b>hi</b> there",
		"plain",
		"&lt;div&gt;nested &amp;lt;x&amp;gt;&lt;/div&gt;",
		"math: a < b and c > d",
	}
	for _, in := range inputs {
		once := StripTags(in)
		twice := StripTags(once)
		if once != twice {
			t.Fatalf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestStripTagsLeavesNoTags(t *testing.T) {
	out := StripTags(`<div class="x"><span>a</span>&lt;script&gt;bad()&lt;/script&gt;</div>`)
	if strings.Contains(out, "<script") || strings.Contains(out, "</") || tagRE.MatchString(out) {
		t.Fatalf("tags survived: %q", out)
	}
}

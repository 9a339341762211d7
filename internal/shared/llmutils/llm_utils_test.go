package llmutils

import "testing"

func TestStripFences(t *testing.T) {
	in := "```json\n{\"a\": 1}\n```"
	if got := StripFences(in); got != `{"a": 1}` {
		t.Errorf("StripFences = %q", got)
	}
	if got := StripFences("no fences here"); got != "no fences here" {
		t.Errorf("StripFences altered plain text: %q", got)
	}
}

func TestStripThink(t *testing.T) {
	in := "<think>internal musing</think>the answer"
	if got := StripThink(in); got != "the answer" {
		t.Errorf("StripThink = %q", got)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Summarise CSV Files", "summarise-csv-files"},
		{"  web -- page!! scrape", "web-page-scrape"},
		{"already-a-slug", "already-a-slug"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 3); got != "abc..." {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("ab", 3); got != "ab" {
		t.Errorf("Truncate = %q", got)
	}
}

package urlutil

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases scheme and host", "HTTPS://Example.COM/Path", "https://example.com/Path"},
		{"strips fragment", "https://example.com/page#section", "https://example.com/page"},
		{"strips trailing slash", "https://example.com/docs/", "https://example.com/docs"},
		{"root keeps slash", "https://example.com/", "https://example.com/"},
		{"empty path becomes root", "https://example.com", "https://example.com/"},
		{"preserves query", "https://example.com/search?q=llm&page=2", "https://example.com/search?q=llm&page=2"},
		{"preserves path case", "https://example.com/About-Us", "https://example.com/About-Us"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			if got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"HTTPS://Example.COM/Path/",
		"https://example.com/a/b?x=1#frag",
		"https://example.com",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestEnsureScheme(t *testing.T) {
	if got := EnsureScheme("example.com"); got != "https://example.com" {
		t.Errorf("expected https prefix, got %q", got)
	}
	if got := EnsureScheme("http://example.com"); got != "http://example.com" {
		t.Errorf("http scheme should be kept, got %q", got)
	}
	if got := EnsureScheme("https://example.com"); got != "https://example.com" {
		t.Errorf("https scheme should be kept, got %q", got)
	}
}

func TestDepth(t *testing.T) {
	cases := []struct {
		url  string
		want int
	}{
		{"https://example.com/", 0},
		{"https://example.com", 0},
		{"https://example.com/about", 1},
		{"https://example.com/blog/post", 2},
		{"https://example.com/docs/api/v2", 3},
		{"https://example.com/docs//api/", 2},
	}
	for _, tc := range cases {
		if got := Depth(tc.url); got != tc.want {
			t.Errorf("Depth(%q) = %d, want %d", tc.url, got, tc.want)
		}
	}
}

func TestFirstSegment(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://example.com/", ""},
		{"https://example.com/blog/post", "blog"},
		{"https://example.com/about", "about"},
	}
	for _, tc := range cases {
		if got := FirstSegment(tc.url); got != tc.want {
			t.Errorf("FirstSegment(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestOriginAndHost(t *testing.T) {
	if got := Origin("HTTPS://Example.com/path?q=1"); got != "https://example.com" {
		t.Errorf("Origin = %q", got)
	}
	if got := Host("https://Example.com:8443/path"); got != "example.com:8443" {
		t.Errorf("Host = %q", got)
	}
}

package urlutil

import "testing"

func TestValidateURL(t *testing.T) {
	valid := []string{
		"https://example.com",
		"http://example.com/path?q=1",
		"https://sub.example.co.uk/a/b",
	}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Errorf("ValidateURL(%q) = %v, want nil", u, err)
		}
	}

	invalid := []string{
		"ftp://example.com/file",
		"javascript:alert(1)",
		"https://",
		"not a url at all",
		"",
	}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Errorf("ValidateURL(%q) = nil, want error", u)
		}
	}
}

func TestResolveURL(t *testing.T) {
	cases := []struct {
		base, href, want string
	}{
		{"https://example.com/a/b", "/img/x.png", "https://example.com/img/x.png"},
		{"https://example.com/a/b", "c", "https://example.com/a/c"},
		{"https://example.com/a/", "https://other.com/x", "https://other.com/x"},
	}
	for _, tc := range cases {
		if got := ResolveURL(tc.base, tc.href); got != tc.want {
			t.Errorf("ResolveURL(%q, %q) = %q, want %q", tc.base, tc.href, got, tc.want)
		}
	}
}

func TestHost(t *testing.T) {
	if got := Host("https://WWW.Example.COM/path"); got != "www.example.com" {
		t.Errorf("Host lowercasing failed: %s", got)
	}
	if got := Host("https://example.com:8080/x"); got != "example.com" {
		t.Errorf("Host should strip port: %s", got)
	}
}

func TestRegistrableDomain(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://www.flipkart.com/search?q=phones", "flipkart.com"},
		{"https://www.amazon.in/s?k=laptops", "amazon.in"},
		{"https://news.bbc.co.uk/world", "bbc.co.uk"},
		{"https://example.com", "example.com"},
	}
	for _, tc := range cases {
		if got := RegistrableDomain(tc.in); got != tc.want {
			t.Errorf("RegistrableDomain(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

package globmatch

import "testing"

func TestMatchBasic(t *testing.T) {
	cases := []struct {
		name    string
		pattern string
		opts    Options
		want    bool
	}{
		{"foo.txt", "*.txt", Options{}, true},
		{"foo.md", "*.txt", Options{}, false},
		{"abc", "a?c", Options{}, true},
		{"abbc", "a?c", Options{}, false},
		{"README", "[Rr]eadme", Options{}, false},
		{"readme", "[Rr]eadme", Options{}, true},
	}
	for _, c := range cases {
		t.Run(c.pattern+"/"+c.name, func(t *testing.T) {
			if got := Match(c.name, c.pattern, c.opts); got != c.want {
				t.Errorf("Match(%q, %q, %+v) = %v, want %v", c.name, c.pattern, c.opts, got, c.want)
			}
		})
	}
}

func TestMatchNoCaseMatch(t *testing.T) {
	if !Match("HELLO.TXT", "*.txt", Options{NoCaseMatch: true}) {
		t.Error("nocasematch should fold both name and pattern before matching")
	}
	if Match("HELLO.TXT", "*.txt", Options{}) {
		t.Error("without nocasematch, matching should be case-sensitive")
	}
}

func TestMatchPOSIXClasses(t *testing.T) {
	if !Match("a1", "[[:alpha:]][[:digit:]]", Options{}) {
		t.Error("expected [[:alpha:]][[:digit:]] to match \"a1\"")
	}
	if Match("11", "[[:alpha:]][[:digit:]]", Options{}) {
		t.Error("expected [[:alpha:]][[:digit:]] not to match \"11\"")
	}
}

func TestMatchExtGlob(t *testing.T) {
	cases := []struct {
		name    string
		pattern string
		want    bool
	}{
		{"foo.c", "@(foo|bar).c", true},
		{"baz.c", "@(foo|bar).c", false},
		{"foofoo.c", "+(foo).c", true},
		{".c", "*(foo).c", true},
		{"x.c", "?(foo).c", false},
		{"x.c", "!(foo).c", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Match(c.name, c.pattern, Options{ExtGlob: true}); got != c.want {
				t.Errorf("Match(%q, %q, extglob) = %v, want %v", c.name, c.pattern, got, c.want)
			}
		})
	}
}

func TestIsPattern(t *testing.T) {
	if !IsPattern("*.go", false) {
		t.Error("\"*.go\" should be recognized as a pattern")
	}
	if IsPattern("plainfile.go", false) {
		t.Error("a literal name should not be recognized as a pattern")
	}
	if !IsPattern("@(a|b)", true) {
		t.Error("an extglob group should be recognized as a pattern when extglob is enabled")
	}
	if IsPattern("@(a|b)", false) {
		t.Error("an extglob group should not be recognized as a pattern when extglob is disabled")
	}
}

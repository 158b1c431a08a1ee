package auth

import "testing"

func TestSplitRefreshToken(t *testing.T) {
	cases := []struct {
		raw        string
		wantJTI    string
		wantSecret string
		wantOK     bool
	}{
		{"jti-1.secret-1", "jti-1", "secret-1", true},
		{"jti-1.secret.with.dots", "jti-1", "secret.with.dots", true},
		{"no-dot-here", "", "", false},
		{".missing-jti", "", "", false},
		{"missing-secret.", "", "", false},
		{"", "", "", false},
	}
	for _, c := range cases {
		jti, secret, ok := splitRefreshToken(c.raw)
		if ok != c.wantOK || jti != c.wantJTI || secret != c.wantSecret {
			t.Errorf("splitRefreshToken(%q) = (%q, %q, %v), want (%q, %q, %v)",
				c.raw, jti, secret, ok, c.wantJTI, c.wantSecret, c.wantOK)
		}
	}
}

func TestExtractUserID(t *testing.T) {
	cases := []struct {
		key  string
		want string
	}{
		{"refresh_token:user-123:jti-456", "user-123"},
		{"malformed:key", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := extractUserID(c.key); got != c.want {
			t.Errorf("extractUserID(%q) = %q, want %q", c.key, got, c.want)
		}
	}
}

func TestRefreshKeyAndBlacklistKeyShapes(t *testing.T) {
	if got := refreshKey("user-1", "jti-1"); got != "refresh_token:user-1:jti-1" {
		t.Errorf("refreshKey = %q", got)
	}
	if got := blacklistKey("jti-1"); got != "blacklist:jti-1" {
		t.Errorf("blacklistKey = %q", got)
	}
}

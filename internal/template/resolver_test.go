package template

import "testing"

func TestCacheKeyLatestVersion(t *testing.T) {
	got := cacheKey("welcome", "en", nil)
	want := "template:welcome:en:latest"
	if got != want {
		t.Errorf("cacheKey = %q, want %q", got, want)
	}
}

func TestCacheKeySpecificVersion(t *testing.T) {
	v := 3
	got := cacheKey("welcome", "en", &v)
	want := "template:welcome:en:3"
	if got != want {
		t.Errorf("cacheKey = %q, want %q", got, want)
	}
}

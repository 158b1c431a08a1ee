package breaker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateFromString(t *testing.T) {
	cases := []struct {
		in   string
		want State
	}{
		{"open", Open},
		{"half_open", HalfOpen},
		{"closed", Closed},
		{"", Closed},
		{"garbage", Closed},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, stateFromString(c.in), "stateFromString(%q)", c.in)
	}
}

func TestKeyShapes(t *testing.T) {
	const resource = "smtp"
	assert.Equal(t, "circuit:smtp:state", stateKey(resource))
	assert.Equal(t, "circuit:smtp:failures", failuresKey(resource))
	assert.Equal(t, "circuit:smtp:successes", successKey(resource))
	assert.Equal(t, "circuit:smtp:opened_at", openedAtKey(resource))
}

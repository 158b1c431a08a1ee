package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRollUpAllHealthy(t *testing.T) {
	checks := map[string]ServiceHealth{
		"database": {Status: Healthy},
		"cache":    {Status: Healthy},
	}
	assert.Equal(t, Healthy, rollUp(checks))
}

func TestRollUpAnyDownWins(t *testing.T) {
	checks := map[string]ServiceHealth{
		"database": {Status: Healthy},
		"smtp":     {Status: Degraded},
		"cache":    {Status: Down},
	}
	assert.Equal(t, Down, rollUp(checks))
}

func TestRollUpDegradedWithoutDown(t *testing.T) {
	checks := map[string]ServiceHealth{
		"database": {Status: Healthy},
		"smtp":     {Status: Degraded},
	}
	assert.Equal(t, Degraded, rollUp(checks))
}

func TestRollUpEmpty(t *testing.T) {
	assert.Equal(t, Healthy, rollUp(map[string]ServiceHealth{}))
}

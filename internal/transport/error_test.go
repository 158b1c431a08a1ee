package transport

import (
	"errors"
	"testing"
)

func TestFromStatusCode(t *testing.T) {
	cases := []struct {
		status        int
		wantRetryable bool
	}{
		{400, false},
		{404, false},
		{499, false},
		{500, true},
		{502, true},
		{599, true},
		{200, true},
	}
	for _, c := range cases {
		err := FromStatusCode(c.status, "body")
		if err.Retryable != c.wantRetryable {
			t.Errorf("FromStatusCode(%d).Retryable = %v, want %v", c.status, err.Retryable, c.wantRetryable)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(NonRetryable(errors.New("bad request"))) {
		t.Error("expected NonRetryable error to not be retryable")
	}
	if !IsRetryable(Retryable(errors.New("timeout"))) {
		t.Error("expected Retryable error to be retryable")
	}
	if !IsRetryable(errors.New("some unclassified error")) {
		t.Error("expected an unclassified error to default to retryable")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := Retryable(cause)
	if !errors.Is(err, cause) {
		t.Error("expected Error to unwrap to its cause")
	}
}

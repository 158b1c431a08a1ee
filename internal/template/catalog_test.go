package template

import (
	"testing"

	"go.uber.org/zap"

	"github.com/iamprecieee/distributed-notification-system/internal/apperr"
)

func TestValidatePlaceholdersRejectsUndeclared(t *testing.T) {
	in := Input{
		Code:      "welcome",
		Language:  "en",
		Content:   map[string]string{"text": "Hi {{name}}, your code is {{otp}}"},
		Variables: []string{"name"},
	}
	err := validatePlaceholders(in, zap.NewNop())
	if err == nil {
		t.Fatal("expected error for undeclared placeholder")
	}
	appErr := apperr.As(err)
	if appErr.Kind != apperr.Validation {
		t.Errorf("got kind %q, want validation", appErr.Kind)
	}
}

func TestValidatePlaceholdersAllowsUnusedDeclaredVariable(t *testing.T) {
	in := Input{
		Code:      "welcome",
		Language:  "en",
		Content:   map[string]string{"text": "Hi {{name}}"},
		Variables: []string{"name", "unused"},
	}
	if err := validatePlaceholders(in, zap.NewNop()); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestMergeContentOverridesBase(t *testing.T) {
	base := map[string]string{"subject": "old subject", "text": "old text"}
	override := map[string]string{"subject": "new subject"}
	merged := mergeContent(base, override)
	if merged["subject"] != "new subject" {
		t.Errorf("merged[subject] = %q, want overridden", merged["subject"])
	}
	if merged["text"] != "old text" {
		t.Errorf("merged[text] = %q, want carried over from base", merged["text"])
	}
}

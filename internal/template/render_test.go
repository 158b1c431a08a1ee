package template

import (
	"reflect"
	"sort"
	"testing"
)

func TestPlaceholders(t *testing.T) {
	got := Placeholders("Hi {{name}}, your order {{order.id}} shipped. Thanks {{ name }}!")
	sort.Strings(got)
	want := []string{"name", "order.id"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Placeholders = %v, want %v", got, want)
	}
}

func TestPlaceholdersNoMatches(t *testing.T) {
	if got := Placeholders("no placeholders here"); got != nil {
		t.Errorf("Placeholders = %v, want nil", got)
	}
}

func TestRenderSimpleSubstitution(t *testing.T) {
	out := Render("Hi {{name}}!", map[string]interface{}{"name": "Ada"})
	if out != "Hi Ada!" {
		t.Errorf("Render = %q", out)
	}
}

func TestRenderMissingVariableRendersEmpty(t *testing.T) {
	out := Render("Hi {{name}}!", map[string]interface{}{})
	if out != "Hi !" {
		t.Errorf("Render = %q, want missing variable to render empty", out)
	}
}

func TestRenderDottedPath(t *testing.T) {
	variables := map[string]interface{}{
		"order": map[string]interface{}{"id": "abc123"},
	}
	out := Render("Order {{order.id}} confirmed", variables)
	if out != "Order abc123 confirmed" {
		t.Errorf("Render = %q", out)
	}
}

func TestRenderDottedPathMissingIntermediate(t *testing.T) {
	out := Render("{{order.id}}", map[string]interface{}{"order": "not-a-map"})
	if out != "" {
		t.Errorf("Render = %q, want empty when intermediate path segment isn't a map", out)
	}
}

func TestRenderNonStringValue(t *testing.T) {
	out := Render("Count: {{count}}", map[string]interface{}{"count": 42})
	if out != "Count: 42" {
		t.Errorf("Render = %q", out)
	}
}

func TestRenderDeclaredButUnusedVariableIsIgnored(t *testing.T) {
	out := Render("Hi {{name}}!", map[string]interface{}{"name": "Ada", "unused": "whatever"})
	if out != "Hi Ada!" {
		t.Errorf("Render = %q", out)
	}
}

package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

func intPtr(v int) *int { return &v }

func TestRequiredRuleGatedByFlag(t *testing.T) {
	t.Parallel()

	eval := New()
	rules := []model.ValidationRule{{Kind: model.RuleKindRequired, Message: "req"}}

	got := eval.Validate(model.FormField{ID: "a", Required: true, Rules: rules}, "")
	if diff := cmp.Diff([]string{"req"}, got); diff != "" {
		t.Fatalf("required empty value (-want +got):\n%s", diff)
	}

	if got := eval.Validate(model.FormField{ID: "a", Required: true, Rules: rules}, "x"); len(got) != 0 {
		t.Fatalf("expected no violations for filled value, got %v", got)
	}

	// The rule is inert when the field itself is not flagged required.
	if got := eval.Validate(model.FormField{ID: "a", Required: false, Rules: rules}, ""); len(got) != 0 {
		t.Fatalf("expected inert rule on non-required field, got %v", got)
	}

	if got := eval.Validate(model.FormField{ID: "a", Required: true, Rules: rules}, nil); len(got) != 1 {
		t.Fatalf("expected one violation for nil value, got %v", got)
	}
}

func TestLengthRules(t *testing.T) {
	t.Parallel()

	eval := New()
	field := model.FormField{
		ID: "a",
		Rules: []model.ValidationRule{
			{Kind: model.RuleKindMinLength, Threshold: intPtr(5), Message: "min"},
			{Kind: model.RuleKindMaxLength, Threshold: intPtr(8), Message: "max"},
		},
	}

	if got := eval.Validate(field, "abcd"); len(got) != 1 || got[0] != "min" {
		t.Fatalf("minLength on %q = %v", "abcd", got)
	}
	if got := eval.Validate(field, "abcde"); len(got) != 0 {
		t.Fatalf("expected pass for boundary value, got %v", got)
	}
	if got := eval.Validate(field, "abcdefghi"); len(got) != 1 || got[0] != "max" {
		t.Fatalf("maxLength on long value = %v", got)
	}
	// Absence never violates length rules; only required catches it.
	if got := eval.Validate(field, ""); len(got) != 0 {
		t.Fatalf("expected empty value to skip length rules, got %v", got)
	}
	if got := eval.Validate(field, nil); len(got) != 0 {
		t.Fatalf("expected nil value to skip length rules, got %v", got)
	}
}

func TestEmailRule(t *testing.T) {
	t.Parallel()

	eval := New()
	field := model.FormField{
		ID:    "email",
		Rules: []model.ValidationRule{{Kind: model.RuleKindEmail, Message: "bad email"}},
	}

	for _, ok := range []string{"a@b.co", "user.name@example.org", "x@sub.domain.tld"} {
		if got := eval.Validate(field, ok); len(got) != 0 {
			t.Fatalf("expected %q to pass, got %v", ok, got)
		}
	}
	for _, bad := range []string{"plain", "no@dot", "two words@x.co", "a@ b.co", "@x.co"} {
		if got := eval.Validate(field, bad); len(got) != 1 {
			t.Fatalf("expected %q to fail, got %v", bad, got)
		}
	}
}

func TestPasswordRule(t *testing.T) {
	t.Parallel()

	eval := New()
	field := model.FormField{
		ID:    "pw",
		Rules: []model.ValidationRule{{Kind: model.RuleKindPassword, Message: "weak"}},
	}

	if got := eval.Validate(field, "short1"); len(got) != 1 {
		t.Fatalf("expected short password to fail, got %v", got)
	}
	if got := eval.Validate(field, "longenough"); len(got) != 1 {
		t.Fatalf("expected digit-free password to fail, got %v", got)
	}
	if got := eval.Validate(field, "longenough1"); len(got) != 0 {
		t.Fatalf("expected valid password to pass, got %v", got)
	}
}

func TestRulesEvaluateIndependently(t *testing.T) {
	t.Parallel()

	eval := New()
	field := model.FormField{
		ID:       "a",
		Required: true,
		Rules: []model.ValidationRule{
			{Kind: model.RuleKindMinLength, Threshold: intPtr(10), Message: "min"},
			{Kind: model.RuleKindEmail, Message: "email"},
			{Kind: model.RuleKindPassword, Message: "pw"},
		},
	}

	got := eval.Validate(field, "abc")
	want := []string{"min", "email", "pw"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("violations (-want +got):\n%s", diff)
	}
}

func TestDuplicateRuleKinds(t *testing.T) {
	t.Parallel()

	eval := New()
	field := model.FormField{
		ID: "a",
		Rules: []model.ValidationRule{
			{Kind: model.RuleKindMinLength, Threshold: intPtr(5), Message: "first"},
			{Kind: model.RuleKindMinLength, Threshold: intPtr(10), Message: "second"},
		},
	}

	got := eval.Validate(field, "123456")
	if diff := cmp.Diff([]string{"second"}, got); diff != "" {
		t.Fatalf("duplicate kinds should evaluate separately (-want +got):\n%s", diff)
	}
}

func TestCustomMatcher(t *testing.T) {
	t.Parallel()

	field := model.FormField{
		ID:    "code",
		Rules: []model.ValidationRule{{Kind: model.RuleKindCustom, Message: "must start with X"}},
	}

	// Without a matcher the custom rule always passes.
	if got := New().Validate(field, "ABC"); len(got) != 0 {
		t.Fatalf("expected custom rule to pass without matcher, got %v", got)
	}

	eval := New(WithCustomMatcher(func(_ model.FormField, _ model.ValidationRule, value any) bool {
		s, _ := value.(string)
		return len(s) > 0 && s[0] == 'X'
	}))
	if got := eval.Validate(field, "ABC"); len(got) != 1 {
		t.Fatalf("expected custom rule to fail, got %v", got)
	}
	if got := eval.Validate(field, "XBC"); len(got) != 0 {
		t.Fatalf("expected custom rule to pass, got %v", got)
	}
}

func TestValidateAll(t *testing.T) {
	t.Parallel()

	eval := New()
	schema := model.FormSchema{Fields: []model.FormField{
		{ID: "a", Required: true, Rules: []model.ValidationRule{{Kind: model.RuleKindRequired, Message: "a req"}}},
		{ID: "b", Rules: []model.ValidationRule{{Kind: model.RuleKindEmail, Message: "b email"}}},
	}}

	got := eval.ValidateAll(schema, map[string]any{"b": "nope"})
	want := map[string][]string{
		"a": {"a req"},
		"b": {"b email"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ValidateAll (-want +got):\n%s", diff)
	}
}

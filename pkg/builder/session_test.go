package builder

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func textField(id, label string, order int) model.FormField {
	return model.FormField{ID: id, Type: model.FieldTypeText, Label: label, Order: order}
}

func TestInitializeIdempotent(t *testing.T) {
	t.Parallel()

	session := NewSession()
	session.Initialize()
	first, ok := session.CurrentSchema()
	if !ok {
		t.Fatalf("expected current schema after Initialize")
	}
	if first.ID == "" {
		t.Fatalf("expected generated schema id")
	}
	if len(first.Fields) != 0 || first.Name != "" {
		t.Fatalf("expected empty schema, got %+v", first)
	}

	session.Initialize()
	second, _ := session.CurrentSchema()
	if second.ID != first.ID {
		t.Fatalf("second Initialize replaced the schema")
	}
}

func TestAddUpdateDeleteField(t *testing.T) {
	t.Parallel()

	session := NewSession()
	session.Initialize()
	session.AddField(textField("a", "First", 0))
	session.AddField(textField("b", "Second", 1))

	if !session.Modified() {
		t.Fatalf("expected modified flag after AddField")
	}

	label := "Renamed"
	required := true
	session.UpdateField("a", FieldUpdate{Label: &label, Required: &required})

	schema, _ := session.CurrentSchema()
	field, ok := schema.Field("a")
	if !ok || field.Label != "Renamed" || !field.Required {
		t.Fatalf("update not applied: %+v", field)
	}
	if other, _ := schema.Field("b"); other.Label != "Second" {
		t.Fatalf("update leaked into sibling: %+v", other)
	}

	session.DeleteField("a")
	schema, _ = session.CurrentSchema()
	if _, ok := schema.Field("a"); ok {
		t.Fatalf("field a should be deleted")
	}
	if field, _ := schema.Field("b"); field.Order != 0 {
		t.Fatalf("orders not renumbered after delete: %+v", field)
	}
}

func TestUpdateFieldUnknownIDIsNoOp(t *testing.T) {
	t.Parallel()

	session := NewSession()
	session.Initialize()
	session.AddField(textField("a", "First", 0))
	before, _ := session.CurrentSchema()

	label := "Changed"
	session.UpdateField("missing", FieldUpdate{Label: &label})

	after, _ := session.CurrentSchema()
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("schema changed on unknown id (-before +after):\n%s", diff)
	}
}

func TestUpdateFieldReplacesNestedSequences(t *testing.T) {
	t.Parallel()

	session := NewSession()
	session.Initialize()
	field := textField("a", "First", 0)
	field.Rules = []model.ValidationRule{
		{Kind: model.RuleKindRequired, Message: "req"},
		{Kind: model.RuleKindEmail, Message: "email"},
	}
	session.AddField(field)

	rules := []model.ValidationRule{{Kind: model.RuleKindPassword, Message: "pw"}}
	session.UpdateField("a", FieldUpdate{Rules: &rules})

	schema, _ := session.CurrentSchema()
	got, _ := schema.Field("a")
	if len(got.Rules) != 1 || got.Rules[0].Kind != model.RuleKindPassword {
		t.Fatalf("rules should be wholly replaced, got %+v", got.Rules)
	}
}

func TestReorderFields(t *testing.T) {
	t.Parallel()

	ids := []string{"a", "b", "c", "d"}

	for from := 0; from < len(ids); from++ {
		for to := 0; to < len(ids); to++ {
			session := NewSession()
			session.Initialize()
			for i, id := range ids {
				session.AddField(textField(id, strings.ToUpper(id), i))
			}

			session.ReorderFields(from, to)

			schema, _ := session.CurrentSchema()
			if len(schema.Fields) != len(ids) {
				t.Fatalf("reorder(%d,%d) changed field count", from, to)
			}
			for i, field := range schema.Fields {
				if field.Order != i {
					t.Fatalf("reorder(%d,%d): field %q order %d at index %d", from, to, field.ID, field.Order, i)
				}
			}

			// The moved element must land at the target index.
			if schema.Fields[to].ID != ids[from] {
				t.Fatalf("reorder(%d,%d): expected %q at index %d, got %q", from, to, ids[from], to, schema.Fields[to].ID)
			}
		}
	}
}

func TestReorderFieldsOutOfRange(t *testing.T) {
	t.Parallel()

	session := NewSession()
	session.Initialize()
	session.AddField(textField("a", "A", 0))
	session.AddField(textField("b", "B", 1))
	before, _ := session.CurrentSchema()

	session.ReorderFields(-1, 0)
	session.ReorderFields(0, 5)
	session.ReorderFields(7, 7)

	after, _ := session.CurrentSchema()
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("out-of-range reorder changed schema:\n%s", diff)
	}
}

func TestSaveSchemaSnapshotAndModifiedFlag(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	session := NewSession(WithClock(fixedClock(now)))
	session.Initialize()
	session.AddField(textField("a", "A", 0))

	saved, err := session.SaveSchema("  My Form  ")
	if err != nil {
		t.Fatalf("SaveSchema: %v", err)
	}
	if len(saved) != 1 || saved[0].Name != "My Form" {
		t.Fatalf("saved = %+v", saved)
	}
	if !saved[0].UpdatedAt.Equal(now) {
		t.Fatalf("UpdatedAt = %v, want %v", saved[0].UpdatedAt, now)
	}
	if session.Modified() {
		t.Fatalf("modified flag should reset after save")
	}

	// Editing after save must not touch the snapshot.
	label := "Changed"
	session.UpdateField("a", FieldUpdate{Label: &label})
	snapshot := session.SavedSchemas()[0]
	if field, _ := snapshot.Field("a"); field.Label != "A" {
		t.Fatalf("saved snapshot changed retroactively: %+v", field)
	}

	// Saving again replaces in place, not appends.
	if saved, err = session.SaveSchema("My Form v2"); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if len(saved) != 1 || saved[0].Name != "My Form v2" {
		t.Fatalf("expected in-place replace, got %+v", saved)
	}
}

func TestSaveSchemaRejectsEmptyName(t *testing.T) {
	t.Parallel()

	session := NewSession()
	session.Initialize()
	if _, err := session.SaveSchema("   "); err != ErrEmptyName {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := NewSession().SaveSchema("x"); err != ErrNoSchema {
		t.Fatalf("expected ErrNoSchema, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	session := NewSession()
	session.Initialize()
	session.AddField(textField("a", "A", 0))
	session.AddField(textField("b", "B", 1))
	if _, err := session.SaveSchema("Test"); err != nil {
		t.Fatalf("save: %v", err)
	}
	want, _ := session.CurrentSchema()

	session.ClearCurrentSchema()
	if _, ok := session.CurrentSchema(); ok {
		t.Fatalf("expected no current schema after clear")
	}

	if !session.LoadSchema(want.ID) {
		t.Fatalf("LoadSchema failed to find %q", want.ID)
	}
	got, _ := session.CurrentSchema()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("load round trip (-want +got):\n%s", diff)
	}
	if session.Modified() {
		t.Fatalf("modified flag should reset after load")
	}

	if session.LoadSchema("missing") {
		t.Fatalf("LoadSchema should report unknown id")
	}
}

func TestDeleteSavedSchema(t *testing.T) {
	t.Parallel()

	session := NewSession()
	session.Initialize()
	if _, err := session.SaveSchema("One"); err != nil {
		t.Fatalf("save: %v", err)
	}
	id := session.SavedSchemas()[0].ID

	session.DeleteSavedSchema("missing")
	if len(session.SavedSchemas()) != 1 {
		t.Fatalf("unknown id delete should be a no-op")
	}

	session.DeleteSavedSchema(id)
	if len(session.SavedSchemas()) != 0 {
		t.Fatalf("expected empty saved collection")
	}
}

func TestNewFieldIDsAreDistinctAndFormulaSafe(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewFieldID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate field id %q", id)
		}
		seen[id] = struct{}{}
		if !strings.HasPrefix(id, "fld_") || strings.ContainsAny(id, "- .") {
			t.Fatalf("id %q is not identifier-safe", id)
		}
	}
}

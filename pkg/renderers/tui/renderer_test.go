package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

type fakeDriver struct {
	inputs    []string
	confirms  []bool
	selects   []int
	textareas []string
	infos     []string
	failWith  error
}

func (d *fakeDriver) Input(_ context.Context, _ InputConfig) (string, error) {
	if d.failWith != nil {
		return "", d.failWith
	}
	if len(d.inputs) == 0 {
		return "", errors.New("fake driver: no scripted input")
	}
	next := d.inputs[0]
	d.inputs = d.inputs[1:]
	return next, nil
}

func (d *fakeDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if len(d.confirms) == 0 {
		return false, errors.New("fake driver: no scripted confirm")
	}
	next := d.confirms[0]
	d.confirms = d.confirms[1:]
	return next, nil
}

func (d *fakeDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if len(d.selects) == 0 {
		return 0, errors.New("fake driver: no scripted select")
	}
	next := d.selects[0]
	d.selects = d.selects[1:]
	return next, nil
}

func (d *fakeDriver) TextArea(_ context.Context, _ TextAreaConfig) (string, error) {
	if len(d.textareas) == 0 {
		return "", errors.New("fake driver: no scripted textarea")
	}
	next := d.textareas[0]
	d.textareas = d.textareas[1:]
	return next, nil
}

func (d *fakeDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func orderSchema() model.FormSchema {
	threshold := 3
	return model.FormSchema{
		ID:   "form-order",
		Name: "Order",
		Fields: []model.FormField{
			{
				ID:       "customer",
				Type:     model.FieldTypeText,
				Label:    "Customer",
				Required: true,
				Rules: []model.ValidationRule{
					{Kind: model.RuleKindRequired, Message: "customer required"},
					{Kind: model.RuleKindMinLength, Threshold: &threshold, Message: "too short"},
				},
			},
			{ID: "qty", Type: model.FieldTypeNumber, Label: "Quantity", Order: 1},
			{ID: "price", Type: model.FieldTypeNumber, Label: "Unit price", Order: 2},
			{
				ID:             "total",
				Type:           model.FieldTypeNumber,
				Label:          "Total",
				IsDerived:      true,
				ParentFieldIDs: []string{"qty", "price"},
				Formula:        "qty * price",
				Order:          3,
			},
			{
				ID:      "shipping",
				Type:    model.FieldTypeSelect,
				Label:   "Shipping",
				Options: []model.SelectOption{{Label: "Standard", Value: "std"}, {Label: "Express", Value: "exp"}},
				Order:   4,
			},
			{ID: "gift", Type: model.FieldTypeCheckbox, Label: "Gift wrap", Order: 5},
		},
	}
}

func TestFillCollectsValues(t *testing.T) {
	t.Parallel()

	driver := &fakeDriver{
		inputs:   []string{"Ada Lovelace", "4", "2.5"},
		selects:  []int{1},
		confirms: []bool{true},
	}
	renderer := New(WithPromptDriver(driver))

	output, err := renderer.Fill(context.Background(), orderSchema())
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}

	var values map[string]any
	if err := json.Unmarshal(output, &values); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if values["customer"] != "Ada Lovelace" {
		t.Fatalf("customer = %v", values["customer"])
	}
	if values["total"] != 10.0 {
		t.Fatalf("total = %v, want 10", values["total"])
	}
	if values["shipping"] != "exp" {
		t.Fatalf("shipping = %v", values["shipping"])
	}
	if values["gift"] != true {
		t.Fatalf("gift = %v", values["gift"])
	}
}

func TestFillRepromptsOnViolation(t *testing.T) {
	t.Parallel()

	driver := &fakeDriver{
		inputs:   []string{"ab", "abc", "1", "1"},
		selects:  []int{0},
		confirms: []bool{false},
	}
	renderer := New(WithPromptDriver(driver))

	output, err := renderer.Fill(context.Background(), orderSchema())
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}

	found := false
	for _, msg := range driver.infos {
		if strings.Contains(msg, "too short") {
			found = true
		}
	}
	if !found {
		t.Fatalf("violation message not surfaced: %v", driver.infos)
	}

	var values map[string]any
	if err := json.Unmarshal(output, &values); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if values["customer"] != "abc" {
		t.Fatalf("customer = %v", values["customer"])
	}
}

func TestFillRepromptsOnNonNumericInput(t *testing.T) {
	t.Parallel()

	driver := &fakeDriver{
		inputs:   []string{"Ada", "lots", "2", "3"},
		selects:  []int{0},
		confirms: []bool{false},
	}
	renderer := New(WithPromptDriver(driver))

	output, err := renderer.Fill(context.Background(), orderSchema())
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}

	found := false
	for _, msg := range driver.infos {
		if strings.Contains(msg, "not a number") {
			found = true
		}
	}
	if !found {
		t.Fatalf("parse failure not surfaced: %v", driver.infos)
	}

	var values map[string]any
	if err := json.Unmarshal(output, &values); err != nil {
		t.Fatalf("unmarshal output: %v", err)
	}
	if values["total"] != 6.0 {
		t.Fatalf("total = %v, want 6", values["total"])
	}
}

func TestFillShowsDerivedValue(t *testing.T) {
	t.Parallel()

	driver := &fakeDriver{
		inputs:   []string{"Ada", "4", "2"},
		selects:  []int{0},
		confirms: []bool{false},
	}
	renderer := New(WithPromptDriver(driver))

	if _, err := renderer.Fill(context.Background(), orderSchema()); err != nil {
		t.Fatalf("Fill: %v", err)
	}

	found := false
	for _, msg := range driver.infos {
		if strings.Contains(msg, "Total: 8") {
			found = true
		}
	}
	if !found {
		t.Fatalf("derived value not announced: %v", driver.infos)
	}
}

func TestFillAbortPropagates(t *testing.T) {
	t.Parallel()

	driver := &fakeDriver{failWith: ErrAborted}
	renderer := New(WithPromptDriver(driver))

	if _, err := renderer.Fill(context.Background(), orderSchema()); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestFillPrettyOutput(t *testing.T) {
	t.Parallel()

	driver := &fakeDriver{
		inputs:   []string{"Ada", "2", "2"},
		selects:  []int{0},
		confirms: []bool{false},
	}
	renderer := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatPrettyText))

	if renderer.ContentType() != "text/plain" {
		t.Fatalf("content type = %q", renderer.ContentType())
	}

	output, err := renderer.Fill(context.Background(), orderSchema())
	if err != nil {
		t.Fatalf("Fill: %v", err)
	}
	text := string(output)
	if !strings.Contains(text, "customer=Ada") || !strings.Contains(text, "total=4") {
		t.Fatalf("pretty output missing entries:\n%s", text)
	}
}

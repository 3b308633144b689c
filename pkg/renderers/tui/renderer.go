// Package tui fills a form schema interactively in the terminal. Prompts go
// through a PromptDriver seam so the interaction logic stays testable without
// a real terminal.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/preview"
)

// Renderer walks a schema's fields in display order, prompting for each
// editable field and showing derived values once their parents are ready.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
}

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Fill.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatPrettyText {
		return "text/plain"
	}
	return "application/json"
}

// Fill prompts for every editable field, validates answers as they land, and
// returns the collected values serialized in the configured output format.
// Derived fields are never prompted; they are printed once their formulas
// resolve.
func (r *Renderer) Fill(ctx context.Context, schema model.FormSchema) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}

	session := preview.NewSession(schema)

	fields := append([]model.FormField(nil), schema.Fields...)
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].Order < fields[j].Order
	})

	for _, field := range fields {
		if field.IsDerived {
			continue
		}
		if err := r.promptField(ctx, field, session); err != nil {
			return nil, err
		}
	}

	for _, field := range fields {
		if !field.IsDerived {
			continue
		}
		value, _ := session.Value(field.ID)
		_ = r.driver.Info(ctx, fmt.Sprintf("%s: %v", promptLabel(field), value))
	}
	for _, issue := range session.DeriveIssues() {
		_ = r.driver.Info(ctx, fmt.Sprintf("Warning: %v", issue))
	}

	values, violations, ok := session.Submit()
	if !ok {
		for fieldID, messages := range violations {
			_ = r.driver.Info(ctx, fmt.Sprintf("Invalid %s: %s", fieldID, strings.Join(messages, "; ")))
		}
		return nil, fmt.Errorf("tui: %d fields failed validation", len(violations))
	}

	return r.serialize(values)
}

func (r *Renderer) promptField(ctx context.Context, field model.FormField, session *preview.Session) error {
	for {
		value, err := r.askOnce(ctx, field, session)
		if err != nil {
			return err
		}

		session.SetValue(field.ID, value)
		violations := session.ErrorsFor(field.ID)
		if len(violations) == 0 {
			return nil
		}
		for _, message := range violations {
			if err := r.driver.Info(ctx, fmt.Sprintf("Invalid %s: %s", promptLabel(field), message)); err != nil {
				return err
			}
		}
	}
}

func (r *Renderer) askOnce(ctx context.Context, field model.FormField, session *preview.Session) (any, error) {
	label := promptLabel(field)
	help := strings.TrimSpace(field.Placeholder)
	current, _ := session.Value(field.ID)

	switch field.Type {
	case model.FieldTypeCheckbox:
		def, _ := current.(bool)
		return r.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: def, Help: help})

	case model.FieldTypeSelect, model.FieldTypeRadio:
		return r.askOption(ctx, field, label, help, current)

	case model.FieldTypeTextarea:
		def, _ := current.(string)
		return r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: def, Help: help})

	case model.FieldTypeNumber:
		return r.askNumber(ctx, field, label, help, current)

	default:
		def, _ := current.(string)
		return r.driver.Input(ctx, InputConfig{Message: label, Default: def, Help: help})
	}
}

func (r *Renderer) askOption(ctx context.Context, field model.FormField, label, help string, current any) (any, error) {
	options := make([]string, len(field.Options))
	values := make([]string, len(field.Options))
	for i, option := range field.Options {
		options[i] = option.Label
		if options[i] == "" {
			options[i] = option.Value
		}
		values[i] = option.Value
	}

	defaultIdx := -1
	if selected, ok := current.(string); ok && selected != "" {
		defaultIdx = indexOf(values, selected)
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         help,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(values) {
			if err := r.driver.Info(ctx, fmt.Sprintf("Invalid %s selection", label)); err != nil {
				return nil, err
			}
			continue
		}
		return values[idx], nil
	}
}

func (r *Renderer) askNumber(ctx context.Context, field model.FormField, label, help string, current any) (any, error) {
	defaultStr := ""
	switch v := current.(type) {
	case string:
		defaultStr = v
	case float64:
		defaultStr = strconv.FormatFloat(v, 'f', -1, 64)
	}

	for {
		input, err := r.driver.Input(ctx, InputConfig{Message: label, Default: defaultStr, Help: help})
		if err != nil {
			return nil, err
		}
		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			// Leave empty; the required rule decides whether that flies.
			return "", nil
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			if err := r.driver.Info(ctx, fmt.Sprintf("Invalid %s: not a number", label)); err != nil {
				return nil, err
			}
			continue
		}
		return parsed, nil
	}
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	if r.outputFormat == OutputFormatPrettyText {
		keys := make([]string, 0, len(values))
		for key := range values {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		var builder strings.Builder
		for _, key := range keys {
			fmt.Fprintf(&builder, "%s=%v\n", key, values[key])
		}
		return []byte(builder.String()), nil
	}
	return json.MarshalIndent(values, "", "  ")
}

func promptLabel(field model.FormField) string {
	if strings.TrimSpace(field.Label) != "" {
		return field.Label
	}
	return field.ID
}

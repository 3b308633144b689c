package html

import (
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// sanitizeText strips markup from author-supplied copy. The policy output is
// already entity-escaped, so sanitized text writes into element bodies and
// quoted attributes as-is.
func sanitizeText(raw string) string {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(textPolicy.Sanitize(raw))
}

func renderField(field model.FormField) (string, error) {
	control, err := renderControl(field)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.Grow(len(control) + 256)

	builder.WriteString(`<div class="fb-field" data-field-type="`)
	builder.WriteString(html.EscapeString(string(field.Type)))
	builder.WriteString(`"`)
	if field.IsDerived {
		builder.WriteString(` data-derived="true" data-parents="`)
		builder.WriteString(html.EscapeString(strings.Join(field.ParentFieldIDs, " ")))
		builder.WriteString(`"`)
	}
	builder.WriteString(">\n")

	if label := sanitizeText(field.Label); label != "" {
		builder.WriteString(`    <label for="fb-`)
		builder.WriteString(html.EscapeString(field.ID))
		builder.WriteString(`" class="fb-label">`)
		builder.WriteString(label)
		if field.Required {
			builder.WriteString(` *`)
		}
		if field.IsDerived {
			builder.WriteString(` <span class="fb-derived-badge">auto</span>`)
		}
		builder.WriteString("</label>\n")
	}

	for _, line := range strings.Split(control, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		builder.WriteString("    ")
		builder.WriteString(line)
		builder.WriteByte('\n')
	}

	builder.WriteString(`    <small class="fb-error" data-error-for="`)
	builder.WriteString(html.EscapeString(field.ID))
	builder.WriteString("\"></small>\n")

	builder.WriteString("</div>\n")
	return builder.String(), nil
}

func renderControl(field model.FormField) (string, error) {
	switch field.Type {
	case model.FieldTypeText, model.FieldTypeNumber, model.FieldTypeDate:
		return renderInput(field), nil
	case model.FieldTypeTextarea:
		return renderTextarea(field), nil
	case model.FieldTypeSelect:
		return renderSelect(field), nil
	case model.FieldTypeRadio:
		return renderRadioGroup(field), nil
	case model.FieldTypeCheckbox:
		return renderCheckbox(field), nil
	default:
		return "", fmt.Errorf("unsupported field type %q", field.Type)
	}
}

func inputType(fieldType model.FieldType) string {
	switch fieldType {
	case model.FieldTypeNumber:
		return "number"
	case model.FieldTypeDate:
		return "date"
	default:
		return "text"
	}
}

func renderInput(field model.FormField) string {
	var builder strings.Builder
	builder.WriteString(`<input type="`)
	builder.WriteString(inputType(field.Type))
	builder.WriteString(`" id="fb-`)
	builder.WriteString(html.EscapeString(field.ID))
	builder.WriteString(`" name="`)
	builder.WriteString(html.EscapeString(field.ID))
	builder.WriteString(`" class="fb-input"`)
	if placeholder := sanitizeText(field.Placeholder); placeholder != "" {
		builder.WriteString(` placeholder="`)
		builder.WriteString(placeholder)
		builder.WriteString(`"`)
	}
	if value := defaultString(field); value != "" {
		builder.WriteString(` value="`)
		builder.WriteString(html.EscapeString(value))
		builder.WriteString(`"`)
	}
	if field.Required {
		builder.WriteString(" required")
	}
	if field.IsDerived {
		builder.WriteString(" readonly")
	}
	builder.WriteString(">")
	return builder.String()
}

func renderTextarea(field model.FormField) string {
	var builder strings.Builder
	builder.WriteString(`<textarea id="fb-`)
	builder.WriteString(html.EscapeString(field.ID))
	builder.WriteString(`" name="`)
	builder.WriteString(html.EscapeString(field.ID))
	builder.WriteString(`" class="fb-textarea"`)
	if placeholder := sanitizeText(field.Placeholder); placeholder != "" {
		builder.WriteString(` placeholder="`)
		builder.WriteString(placeholder)
		builder.WriteString(`"`)
	}
	if field.Required {
		builder.WriteString(" required")
	}
	if field.IsDerived {
		builder.WriteString(" readonly")
	}
	builder.WriteString(">")
	builder.WriteString(html.EscapeString(defaultString(field)))
	builder.WriteString("</textarea>")
	return builder.String()
}

func renderSelect(field model.FormField) string {
	selected := defaultString(field)

	var builder strings.Builder
	builder.WriteString(`<select id="fb-`)
	builder.WriteString(html.EscapeString(field.ID))
	builder.WriteString(`" name="`)
	builder.WriteString(html.EscapeString(field.ID))
	builder.WriteString(`" class="fb-select"`)
	if field.Required {
		builder.WriteString(" required")
	}
	builder.WriteString(">\n")
	builder.WriteString(`    <option value="">Choose…</option>` + "\n")
	for _, option := range field.Options {
		builder.WriteString(`    <option value="`)
		builder.WriteString(html.EscapeString(option.Value))
		builder.WriteString(`"`)
		if selected != "" && option.Value == selected {
			builder.WriteString(" selected")
		}
		builder.WriteString(">")
		builder.WriteString(sanitizeText(option.Label))
		builder.WriteString("</option>\n")
	}
	builder.WriteString("</select>")
	return builder.String()
}

func renderRadioGroup(field model.FormField) string {
	selected := defaultString(field)

	var builder strings.Builder
	builder.WriteString(`<div class="fb-radio-group" role="radiogroup">` + "\n")
	for i, option := range field.Options {
		controlID := fmt.Sprintf("fb-%s-%d", field.ID, i)
		builder.WriteString(`    <label class="fb-radio"><input type="radio" id="`)
		builder.WriteString(html.EscapeString(controlID))
		builder.WriteString(`" name="`)
		builder.WriteString(html.EscapeString(field.ID))
		builder.WriteString(`" value="`)
		builder.WriteString(html.EscapeString(option.Value))
		builder.WriteString(`"`)
		if selected != "" && option.Value == selected {
			builder.WriteString(" checked")
		}
		builder.WriteString("> ")
		builder.WriteString(sanitizeText(option.Label))
		builder.WriteString("</label>\n")
	}
	builder.WriteString("</div>")
	return builder.String()
}

func renderCheckbox(field model.FormField) string {
	var builder strings.Builder
	builder.WriteString(`<input type="checkbox" id="fb-`)
	builder.WriteString(html.EscapeString(field.ID))
	builder.WriteString(`" name="`)
	builder.WriteString(html.EscapeString(field.ID))
	builder.WriteString(`" class="fb-checkbox" value="true"`)
	if checked, ok := field.DefaultValue.(bool); ok && checked {
		builder.WriteString(" checked")
	}
	builder.WriteString(">")
	return builder.String()
}

func defaultString(field model.FormField) string {
	switch value := field.DefaultValue.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		if value {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", value)
	}
}

package model

// CloneField returns a deep copy of the field. Rules, options, and parent ids
// are copied so mutations on the clone never leak back into the source.
func CloneField(field FormField) FormField {
	out := field
	if len(field.Rules) > 0 {
		out.Rules = make([]ValidationRule, len(field.Rules))
		copy(out.Rules, field.Rules)
		for i, rule := range field.Rules {
			if rule.Threshold != nil {
				threshold := *rule.Threshold
				out.Rules[i].Threshold = &threshold
			}
		}
	}
	if len(field.ParentFieldIDs) > 0 {
		out.ParentFieldIDs = append([]string(nil), field.ParentFieldIDs...)
	}
	if len(field.Options) > 0 {
		out.Options = append([]SelectOption(nil), field.Options...)
	}
	return out
}

// CloneSchema returns a deep copy of the schema. Saved snapshots rely on this
// so later edits to the working schema do not retroactively change them.
func CloneSchema(schema FormSchema) FormSchema {
	out := schema
	if schema.Fields != nil {
		out.Fields = make([]FormField, len(schema.Fields))
		for i, field := range schema.Fields {
			out.Fields[i] = CloneField(field)
		}
	}
	return out
}

// CloneSchemas deep-copies a saved-schema collection, preserving order.
func CloneSchemas(schemas []FormSchema) []FormSchema {
	if schemas == nil {
		return nil
	}
	out := make([]FormSchema, len(schemas))
	for i, schema := range schemas {
		out[i] = CloneSchema(schema)
	}
	return out
}

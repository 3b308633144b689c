package expr

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// builtin is one allowlisted formula function.
type builtin func(args []any) (any, error)

// nowFunc is swapped in tests to pin time-dependent builtins.
var nowFunc = time.Now

// defaultBuiltins returns the fixed function allowlist. It mirrors the ambient
// utilities the browser original injected (date construction and numeric
// parsing) plus the string and math helpers formulas commonly need.
func defaultBuiltins() map[string]builtin {
	return map[string]builtin{
		"parseInt":    fnParseInt,
		"parseFloat":  fnParseFloat,
		"min":         fnMin,
		"max":         fnMax,
		"abs":         wrapMath("abs", math.Abs),
		"round":       wrapMath("round", math.Round),
		"floor":       wrapMath("floor", math.Floor),
		"ceil":        wrapMath("ceil", math.Ceil),
		"len":         fnLen,
		"concat":      fnConcat,
		"upper":       wrapString("upper", strings.ToUpper),
		"lower":       wrapString("lower", strings.ToLower),
		"trim":        wrapString("trim", strings.TrimSpace),
		"now":         fnNow,
		"date":        fnDate,
		"year":        fnYear,
		"month":       fnMonth,
		"day":         fnDay,
		"age":         fnAge,
		"daysBetween": fnDaysBetween,
	}
}

func fnParseInt(args []any) (any, error) {
	if len(args) != 1 {
		return nil, errors.New("expr: parseInt takes one argument")
	}
	num, ok := toNumber(args[0])
	if !ok {
		return nil, fmt.Errorf("expr: parseInt: cannot parse %v", args[0])
	}
	return math.Trunc(num), nil
}

func fnParseFloat(args []any) (any, error) {
	if len(args) != 1 {
		return nil, errors.New("expr: parseFloat takes one argument")
	}
	num, ok := toNumber(args[0])
	if !ok {
		return nil, fmt.Errorf("expr: parseFloat: cannot parse %v", args[0])
	}
	return num, nil
}

func fnMin(args []any) (any, error) { return fold("min", args, math.Min) }

func fnMax(args []any) (any, error) { return fold("max", args, math.Max) }

func fold(name string, args []any, combine func(a, b float64) float64) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("expr: %s needs at least one argument", name)
	}
	acc, ok := toNumber(args[0])
	if !ok {
		return nil, fmt.Errorf("expr: %s: non-numeric argument", name)
	}
	for _, arg := range args[1:] {
		num, ok := toNumber(arg)
		if !ok {
			return nil, fmt.Errorf("expr: %s: non-numeric argument", name)
		}
		acc = combine(acc, num)
	}
	return acc, nil
}

func wrapMath(name string, fn func(float64) float64) builtin {
	return func(args []any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expr: %s takes one argument", name)
		}
		num, ok := toNumber(args[0])
		if !ok {
			return nil, fmt.Errorf("expr: %s: non-numeric argument", name)
		}
		return fn(num), nil
	}
}

func wrapString(name string, fn func(string) string) builtin {
	return func(args []any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expr: %s takes one argument", name)
		}
		return fn(toString(args[0])), nil
	}
}

func fnLen(args []any) (any, error) {
	if len(args) != 1 {
		return nil, errors.New("expr: len takes one argument")
	}
	return float64(len(toString(args[0]))), nil
}

func fnConcat(args []any) (any, error) {
	var b strings.Builder
	for _, arg := range args {
		b.WriteString(toString(arg))
	}
	return b.String(), nil
}

func fnNow(args []any) (any, error) {
	if len(args) != 0 {
		return nil, errors.New("expr: now takes no arguments")
	}
	return nowFunc(), nil
}

func fnDate(args []any) (any, error) {
	if len(args) != 1 {
		return nil, errors.New("expr: date takes one argument")
	}
	return toDate(args[0])
}

func fnYear(args []any) (any, error) {
	return datePart("year", args, func(t time.Time) int { return t.Year() })
}

func fnMonth(args []any) (any, error) {
	return datePart("month", args, func(t time.Time) int { return int(t.Month()) })
}

func fnDay(args []any) (any, error) {
	return datePart("day", args, func(t time.Time) int { return t.Day() })
}

func datePart(name string, args []any, part func(time.Time) int) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expr: %s takes one argument", name)
	}
	t, err := toDate(args[0])
	if err != nil {
		return nil, err
	}
	return float64(part(t)), nil
}

// fnAge returns completed years between the given date and now.
func fnAge(args []any) (any, error) {
	if len(args) != 1 {
		return nil, errors.New("expr: age takes one argument")
	}
	birth, err := toDate(args[0])
	if err != nil {
		return nil, err
	}
	now := nowFunc()
	years := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return float64(years), nil
}

func fnDaysBetween(args []any) (any, error) {
	if len(args) != 2 {
		return nil, errors.New("expr: daysBetween takes two arguments")
	}
	from, err := toDate(args[0])
	if err != nil {
		return nil, err
	}
	to, err := toDate(args[1])
	if err != nil {
		return nil, err
	}
	return math.Floor(to.Sub(from).Hours() / 24), nil
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

func toDate(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		trimmed := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("expr: cannot parse date %q", v)
	default:
		return time.Time{}, fmt.Errorf("expr: cannot interpret %T as date", value)
	}
}

// ---- coercion helpers ----

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case time.Time:
		return !v.IsZero()
	default:
		return true
	}
}

func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format("2006-01-02")
	default:
		return fmt.Sprint(value)
	}
}

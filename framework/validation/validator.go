package validation

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	alphaRe     = regexp.MustCompile(`^[a-zA-Z]+$`)
	alphaNumRe  = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
	alphaDashRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// ── Types ────────────────────────────────────────────────────────────────────

// Errors is a bag of messages keyed by field.
// JSON output: {"errors": {"field": ["msg1", "msg2"]}}
type Errors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *Errors) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

// Has returns true if there are any errors.
func (e *Errors) Has() bool { return len(e.Bag) > 0 }

// First returns the first error for a field.
func (e *Errors) First(field string) string {
	if msgs, ok := e.Bag[field]; ok && len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Error joins every message, fields in sorted order.
func (e *Errors) Error() string {
	fields := make([]string, 0, len(e.Bag))
	for f := range e.Bag {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	var msgs []string
	for _, f := range fields {
		msgs = append(msgs, e.Bag[f]...)
	}
	return strings.Join(msgs, " ")
}

// ── Validator ────────────────────────────────────────────────────────────────

// Rules is a map of field → pipe-separated rule string.
// e.g. Rules{"name": "required|alpha|max:32", "count": "integer|gte:1"}
//
// A field without "required" is skipped when its value is empty. A regex
// rule consumes the rest of the string, so it may contain '|'.
type Rules map[string]string

// Validator validates a flat map of input values.
type Validator struct {
	data   map[string]string
	rules  Rules
	errors *Errors
	ran    bool
}

// Make creates a new Validator.
func Make(data map[string]string, rules Rules) *Validator {
	return &Validator{
		data:   data,
		rules:  rules,
		errors: &Errors{},
	}
}

// Fails runs validation and returns true if any rule fails.
func (v *Validator) Fails() bool {
	v.validate()
	return v.errors.Has()
}

// Passes runs validation and returns true if all rules pass.
func (v *Validator) Passes() bool { return !v.Fails() }

// Errors returns the validation error bag.
func (v *Validator) Errors() *Errors { return v.errors }

// ── Core validation loop ─────────────────────────────────────────────────────

func (v *Validator) validate() {
	if v.ran {
		return
	}
	v.ran = true

	fields := make([]string, 0, len(v.rules))
	for f := range v.rules {
		fields = append(fields, f)
	}
	slices.Sort(fields)

	for _, field := range fields {
		value := v.data[field]
		rules := split(v.rules[field])

		if strings.TrimSpace(value) == "" && !slices.Contains(rules, "required") {
			continue
		}

		for _, rule := range rules {
			// Parse rule name and optional parameter: min:3 → name=min, param=3
			name, param, _ := strings.Cut(rule, ":")

			if !v.applyRule(field, value, name, param) {
				break // stop on first failure
			}
		}
	}
}

func split(ruleStr string) []string {
	var out []string
	for ruleStr != "" {
		if strings.HasPrefix(strings.TrimSpace(ruleStr), "regex:") {
			out = append(out, strings.TrimSpace(ruleStr))
			break
		}
		rule, rest, _ := strings.Cut(ruleStr, "|")
		if rule = strings.TrimSpace(rule); rule != "" {
			out = append(out, rule)
		}
		ruleStr = rest
	}
	return out
}

// applyRule returns true if the rule passes. Unknown rules pass.
func (v *Validator) applyRule(field, value, rule, param string) bool {
	switch rule {
	case "required":
		if strings.TrimSpace(value) == "" {
			v.errors.add(field, fmt.Sprintf("The %s field is required.", field))
			return false
		}

	case "numeric":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			v.errors.add(field, fmt.Sprintf("The %s must be a number.", field))
			return false
		}

	case "integer":
		if _, err := strconv.Atoi(value); err != nil {
			v.errors.add(field, fmt.Sprintf("The %s must be an integer.", field))
			return false
		}

	case "boolean":
		if _, err := strconv.ParseBool(value); err != nil {
			v.errors.add(field, fmt.Sprintf("The %s field must be true or false.", field))
			return false
		}

	case "min":
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) < n {
			v.errors.add(field, fmt.Sprintf("The %s must be at least %d characters.", field, n))
			return false
		}

	case "max":
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) > n {
			v.errors.add(field, fmt.Sprintf("The %s may not be greater than %d characters.", field, n))
			return false
		}

	case "in":
		if !slices.Contains(list(param), value) {
			v.errors.add(field, fmt.Sprintf("The selected %s is invalid.", field))
			return false
		}

	case "not_in":
		if slices.Contains(list(param), value) {
			v.errors.add(field, fmt.Sprintf("The selected %s is invalid.", field))
			return false
		}

	case "alpha":
		if !alphaRe.MatchString(value) {
			v.errors.add(field, fmt.Sprintf("The %s may only contain letters.", field))
			return false
		}

	case "alpha_num":
		if !alphaNumRe.MatchString(value) {
			v.errors.add(field, fmt.Sprintf("The %s may only contain letters and numbers.", field))
			return false
		}

	case "alpha_dash":
		if !alphaDashRe.MatchString(value) {
			v.errors.add(field, fmt.Sprintf("The %s may only contain letters, numbers, dashes and underscores.", field))
			return false
		}

	case "regex":
		re, err := regexp.Compile(param)
		if err != nil || !re.MatchString(value) {
			v.errors.add(field, fmt.Sprintf("The %s format is invalid.", field))
			return false
		}

	case "gte":
		f, err := strconv.ParseFloat(value, 64)
		t, _ := strconv.ParseFloat(param, 64)
		if err != nil || f < t {
			v.errors.add(field, fmt.Sprintf("The %s must be greater than or equal to %s.", field, param))
			return false
		}

	case "lte":
		f, err := strconv.ParseFloat(value, 64)
		t, _ := strconv.ParseFloat(param, 64)
		if err != nil || f > t {
			v.errors.add(field, fmt.Sprintf("The %s must be less than or equal to %s.", field, param))
			return false
		}
	}

	return true
}

func list(param string) []string {
	parts := strings.Split(param, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

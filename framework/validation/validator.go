// Package validation applies rule strings to component props before
// construction. Rules use the familiar pipe syntax:
//
//	validation.Rules{
//	    "title": "required|min:2|max:100",
//	    "width": "integer|gte:1",
//	}
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/loomkit/loom/framework/component"
)

// ── Types ────────────────────────────────────────────────────────────────────

// Errors holds per-prop validation failures.
type Errors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *Errors) add(prop, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[prop] = append(e.Bag[prop], msg)
}

// Has returns true if there are any errors.
func (e *Errors) Has() bool { return len(e.Bag) > 0 }

// First returns the first error for a prop.
func (e *Errors) First(prop string) string {
	if msgs, ok := e.Bag[prop]; ok && len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Rules maps prop name → pipe-separated rule string.
type Rules map[string]string

// Validator checks a props bag against its rules.
type Validator struct {
	props  component.Props
	rules  Rules
	errors *Errors
}

// Make creates a Validator for one props bag.
func Make(props component.Props, rules Rules) *Validator {
	return &Validator{props: props, rules: rules, errors: &Errors{}}
}

// Fails runs validation and returns true if any rule fails.
func (v *Validator) Fails() bool {
	v.validate()
	return v.errors.Has()
}

// Passes runs validation and returns true if all rules pass.
func (v *Validator) Passes() bool { return !v.Fails() }

// Errors returns the error bag.
func (v *Validator) Errors() *Errors { return v.errors }

// ── Core loop ────────────────────────────────────────────────────────────────

func (v *Validator) validate() {
	for prop, ruleStr := range v.rules {
		raw, present := v.props[prop]
		value := ""
		if present && raw != nil {
			value = fmt.Sprint(raw)
		}

		for _, rule := range strings.Split(ruleStr, "|") {
			rule = strings.TrimSpace(rule)
			if rule == "" {
				continue
			}
			name, param, _ := strings.Cut(rule, ":")

			if name == "sometimes" {
				if !present {
					break
				}
				continue
			}

			check, ok := checks[name]
			if !ok {
				continue
			}
			if msg := check(value, param, prop); msg != "" {
				v.errors.add(prop, msg)
				break // first failure per prop wins
			}
		}
	}
}

// checkFunc returns "" on pass, or the failure message.
type checkFunc func(value, param, prop string) string

var checks = map[string]checkFunc{
	"required": func(value, _, prop string) string {
		if strings.TrimSpace(value) == "" {
			return fmt.Sprintf("The %s prop is required.", prop)
		}
		return ""
	},
	"numeric": func(value, _, prop string) string {
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return fmt.Sprintf("The %s must be a number.", prop)
		}
		return ""
	},
	"integer": func(value, _, prop string) string {
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Sprintf("The %s must be an integer.", prop)
		}
		return ""
	},
	"boolean": func(value, _, prop string) string {
		switch strings.ToLower(value) {
		case "true", "false", "1", "0":
			return ""
		}
		return fmt.Sprintf("The %s prop must be true or false.", prop)
	},
	"min": func(value, param, prop string) string {
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) < n {
			return fmt.Sprintf("The %s must be at least %d characters.", prop, n)
		}
		return ""
	},
	"max": func(value, param, prop string) string {
		n, _ := strconv.Atoi(param)
		if utf8.RuneCountInString(value) > n {
			return fmt.Sprintf("The %s may not be greater than %d characters.", prop, n)
		}
		return ""
	},
	"in": func(value, param, prop string) string {
		for _, a := range strings.Split(param, ",") {
			if strings.TrimSpace(a) == value {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", prop)
	},
	"regex": func(value, param, prop string) string {
		re, err := regexp.Compile(param)
		if err != nil || !re.MatchString(value) {
			return fmt.Sprintf("The %s format is invalid.", prop)
		}
		return ""
	},
	"gt":  compare("gt", "The %s must be greater than %s."),
	"gte": compare("gte", "The %s must be greater than or equal to %s."),
	"lt":  compare("lt", "The %s must be less than %s."),
	"lte": compare("lte", "The %s must be less than or equal to %s."),
}

func compare(op, msg string) checkFunc {
	return func(value, param, prop string) string {
		f, _ := strconv.ParseFloat(value, 64)
		bound, _ := strconv.ParseFloat(param, 64)
		ok := false
		switch op {
		case "gt":
			ok = f > bound
		case "gte":
			ok = f >= bound
		case "lt":
			ok = f < bound
		case "lte":
			ok = f <= bound
		}
		if !ok {
			return fmt.Sprintf(msg, prop, param)
		}
		return ""
	}
}

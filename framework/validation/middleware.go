package validation

import (
	"fmt"
	"strings"

	"github.com/loomkit/loom/framework/component"
	"github.com/loomkit/loom/framework/pipeline"
)

// Error carries the full error bag when a props bag fails its rules.
type Error struct {
	Component string
	Errors    *Errors
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Errors.Bag))
	for prop, msgs := range e.Errors.Bag {
		parts = append(parts, prop+": "+msgs[0])
	}
	return fmt.Sprintf("validation: props for %s rejected (%s)", e.Component, strings.Join(parts, "; "))
}

// Middleware wraps a rule set as a pipeline middleware. Register it scoped to
// the component whose props it guards:
//
//	p.UseScoped("Card", validation.Middleware(-50, validation.Rules{
//	    "title": "required|max:100",
//	}))
//
// A failing bag surfaces as an *Error, never as a halt: halting is reserved
// for deliberate short-circuits.
func Middleware(priority int, rules Rules) pipeline.Middleware {
	return pipeline.Func(priority, func(d *component.Descriptor, props component.Props, _ *component.ResolutionContext) (component.Props, error) {
		v := Make(props, rules)
		if v.Fails() {
			return nil, &Error{Component: d.Name(), Errors: v.Errors()}
		}
		return props, nil
	})
}

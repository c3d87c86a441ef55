package container

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/loomkit/loom/framework/component"
)

var injectorType = reflect.TypeOf((**Injector)(nil)).Elem()

// ── Build state ───────────────────────────────────────────────────────────────

// buildState is the per-call stack of types currently under construction.
// It exists only for the duration of one resolution, so concurrent
// resolutions never observe each other's stacks.
type buildState struct {
	stack []reflect.Type
}

func newBuildState() *buildState {
	return &buildState{}
}

func (st *buildState) push(t reflect.Type) error {
	for _, seen := range st.stack {
		if seen == t {
			chain := make([]reflect.Type, len(st.stack), len(st.stack)+1)
			copy(chain, st.stack)
			return &CircularDependencyError{Chain: append(chain, t)}
		}
	}
	st.stack = append(st.stack, t)
	return nil
}

func (st *buildState) pop() {
	st.stack = st.stack[:len(st.stack)-1]
}

// ── Injector ──────────────────────────────────────────────────────────────────

// Injector constructs struct instances by reflection. Two field tags drive
// construction:
//
//	type Widget struct {
//	    Logger  Logger `inject:""`                    // resolved from the container
//	    Title   string `prop:"title" default:"Hi"`    // override > default > error
//	}
//
// Injected fields resolve their declared type from the container; a missing
// registration is an InjectorNotFoundError. Prop fields take the caller's
// override first, then the default tag converted to the field's kind, and
// fail with MissingPropError when neither exists. Untagged fields stay at
// their zero value.
type Injector struct {
	c *Container
}

// NewInjector creates an injector backed by c. Register it into the same
// container so constructed-type entries and the resolver can find it:
//
//	container.RegisterValue[*container.Injector](c, container.NewInjector(c))
func NewInjector(c *Container) *Injector {
	return &Injector{c: c}
}

// Construct builds a *T for the struct type t, resolving injected fields and
// applying prop precedence from overrides.
func (in *Injector) Construct(t reflect.Type, rc *component.ResolutionContext, overrides component.Props) (any, error) {
	return in.construct(nil, t, rc, overrides, newBuildState())
}

// ConstructCtx is Construct on the ctx path: injected fields bound to
// context-accepting factories are awaited in place.
func (in *Injector) ConstructCtx(ctx context.Context, t reflect.Type, rc *component.ResolutionContext, overrides component.Props) (any, error) {
	return in.construct(ctx, t, rc, overrides, newBuildState())
}

func (in *Injector) construct(ctx context.Context, t reflect.Type, rc *component.ResolutionContext, overrides component.Props, st *buildState) (any, error) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("container: cannot construct non-struct type %s", t)
	}

	if err := st.push(t); err != nil {
		return nil, err
	}
	defer st.pop()

	v := reflect.New(t)
	elem := v.Elem()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		switch {
		case isInjected(field):
			if err := in.setInjected(ctx, elem.Field(i), t, field, rc, st); err != nil {
				return nil, err
			}
		case isProp(field):
			if err := setProp(elem.Field(i), t, field, overrides); err != nil {
				return nil, err
			}
		}
	}

	return v.Interface(), nil
}

// setInjected resolves field's declared type from the container.
func (in *Injector) setInjected(ctx context.Context, fv reflect.Value, owner reflect.Type, field reflect.StructField, rc *component.ResolutionContext, st *buildState) error {
	if !fv.CanSet() {
		return fmt.Errorf("container: injected field %s.%s must be exported", owner, field.Name)
	}

	dep, err := in.c.resolve(ctx, field.Type, rc, nil, st)
	if err != nil {
		var nf *ServiceNotFoundError
		if errors.As(err, &nf) {
			return &InjectorNotFoundError{Owner: owner, Field: field.Name, Type: field.Type}
		}
		return err
	}

	dv := reflect.ValueOf(dep)
	if !dv.Type().AssignableTo(field.Type) {
		return fmt.Errorf(
			"container: injected field %s.%s: %s is not assignable to %s",
			owner, field.Name, dv.Type(), field.Type,
		)
	}
	fv.Set(dv)
	return nil
}

// setProp applies the three-tier precedence: caller override, then the
// default tag, then failure.
func setProp(fv reflect.Value, owner reflect.Type, field reflect.StructField, overrides component.Props) error {
	if !fv.CanSet() {
		return fmt.Errorf("container: prop field %s.%s must be exported", owner, field.Name)
	}

	name := propName(field)

	if ov, ok := overrides[name]; ok {
		return assignProp(fv, owner, field, ov)
	}

	if def, ok := field.Tag.Lookup("default"); ok {
		return assignDefault(fv, owner, field, def)
	}

	return &MissingPropError{Owner: owner, Field: field.Name, Prop: name}
}

func assignProp(fv reflect.Value, owner reflect.Type, field reflect.StructField, value any) error {
	vv := reflect.ValueOf(value)
	switch {
	case value == nil:
		fv.SetZero()
	case vv.Type().AssignableTo(field.Type):
		fv.Set(vv)
	case convertibleProp(vv.Type(), field.Type):
		fv.Set(vv.Convert(field.Type))
	default:
		return fmt.Errorf(
			"container: prop %q of %s: cannot assign %s to %s",
			propName(field), owner, vv.Type(), field.Type,
		)
	}
	return nil
}

// convertibleProp reports whether a prop value of type from may be converted
// to a field of type to. Go's integer-to-string conversion yields a
// code-point string (65 → "A"), never what a prop caller means, so it is
// rejected rather than applied.
func convertibleProp(from, to reflect.Type) bool {
	if !from.ConvertibleTo(to) {
		return false
	}
	if to.Kind() == reflect.String {
		switch from.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return false
		}
	}
	return true
}

// assignDefault converts the default tag's string literal to the field kind.
func assignDefault(fv reflect.Value, owner reflect.Type, field reflect.StructField, def string) error {
	switch field.Type.Kind() {
	case reflect.String:
		fv.SetString(def)
	case reflect.Bool:
		b, err := strconv.ParseBool(def)
		if err != nil {
			return defaultTagError(owner, field, def, err)
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(def, 10, 64)
		if err != nil {
			return defaultTagError(owner, field, def, err)
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(def, 10, 64)
		if err != nil {
			return defaultTagError(owner, field, def, err)
		}
		fv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(def, 64)
		if err != nil {
			return defaultTagError(owner, field, def, err)
		}
		fv.SetFloat(f)
	default:
		return fmt.Errorf(
			"container: default tag on %s.%s: kind %s has no literal form",
			owner, field.Name, field.Type.Kind(),
		)
	}
	return nil
}

func defaultTagError(owner reflect.Type, field reflect.StructField, def string, err error) error {
	return fmt.Errorf("container: default tag on %s.%s: %q: %w", owner, field.Name, def, err)
}

// ── Tag helpers ───────────────────────────────────────────────────────────────

func isInjected(field reflect.StructField) bool {
	_, ok := field.Tag.Lookup("inject")
	return ok
}

func isProp(field reflect.StructField) bool {
	_, ok := field.Tag.Lookup("prop")
	return ok
}

// propName returns the prop key: the tag value, or the lower-cased field name
// when the tag is empty.
func propName(field reflect.StructField) string {
	if tag := field.Tag.Get("prop"); tag != "" {
		return tag
	}
	return strings.ToLower(field.Name[:1]) + field.Name[1:]
}

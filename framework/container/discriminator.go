package container

import (
	"reflect"
	"strings"

	"github.com/loomkit/loom/framework/component"
)

// ── Discriminator ─────────────────────────────────────────────────────────────

// Discriminator is a secondary registration key used to choose among several
// implementations of one type. It can constrain the current resource's
// concrete type, the current location path, or both. Once attached to a
// registration it is never modified.
type Discriminator struct {
	resource reflect.Type
	location string
}

// ForResource returns a discriminator matching contexts whose current
// resource has exactly prototype's concrete type.
//
//	c.RegisterVariant(key, factory, container.ForResource(&Article{}))
func ForResource(prototype any) Discriminator {
	return Discriminator{resource: reflect.TypeOf(prototype)}
}

// AtPath returns a discriminator matching contexts whose location path falls
// under path. Deeper paths are more specific and win over shallower ones.
//
//	c.RegisterVariant(key, factory, container.AtPath("/blog"))
func AtPath(path string) Discriminator {
	return Discriminator{location: normalizePath(path)}
}

// AtPath narrows a resource discriminator with a location constraint.
//
//	container.ForResource(&Article{}).AtPath("/blog/2026")
func (d Discriminator) AtPath(path string) Discriminator {
	d.location = normalizePath(path)
	return d
}

// ForResource narrows a location discriminator with a resource constraint.
func (d Discriminator) ForResource(prototype any) Discriminator {
	d.resource = reflect.TypeOf(prototype)
	return d
}

// isZero reports whether the discriminator constrains nothing, i.e. the
// registration is a default.
func (d Discriminator) isZero() bool {
	return d.resource == nil && d.location == ""
}

// specificity scores d against rc. A negative score means no match. Among
// matches, a resource constraint outranks any location depth, and deeper
// location prefixes outrank shallower ones. A default scores zero.
func (d Discriminator) specificity(rc *component.ResolutionContext) int {
	score := 0

	if d.resource != nil {
		if rc == nil || rc.ResourceType() != d.resource {
			return -1
		}
		score += 1 << 16
	}

	if d.location != "" {
		if rc == nil || !pathWithin(rc.Path(), d.location) {
			return -1
		}
		score += pathDepth(d.location) + 1
	}

	return score
}

// ── Path helpers ──────────────────────────────────────────────────────────────

func normalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// pathWithin reports whether path falls under prefix on segment boundaries:
// "/blog" covers "/blog" and "/blog/2026", never "/blogroll".
func pathWithin(path, prefix string) bool {
	path = normalizePath(path)
	if prefix == "/" {
		return true
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

func pathDepth(p string) int {
	if p == "/" {
		return 0
	}
	return strings.Count(p, "/")
}

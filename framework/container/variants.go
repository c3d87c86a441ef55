package container

import (
	"reflect"

	"github.com/loomkit/loom/framework/component"
)

// VariantBuilder implements the fluent variant registration API.
//
//	c.When(reflect.TypeFor[CardTheme]()).
//	    ForResource(&Article{}).
//	    AtPath("/blog").
//	    Give(articleCardTheme)
type VariantBuilder struct {
	container *Container
	key       reflect.Type
	disc      Discriminator
	opts      []Option
}

// When starts a variant registration chain for key.
func (c *Container) When(key reflect.Type) *VariantBuilder {
	return &VariantBuilder{container: c, key: key}
}

// ForResource constrains the variant to contexts whose resource has exactly
// prototype's concrete type.
func (b *VariantBuilder) ForResource(prototype any) *VariantBuilder {
	b.disc = b.disc.ForResource(prototype)
	return b
}

// AtPath constrains the variant to contexts whose location falls under path.
func (b *VariantBuilder) AtPath(path string) *VariantBuilder {
	b.disc = b.disc.AtPath(path)
	return b
}

// AsSingleton caches the variant's product after first resolution.
func (b *VariantBuilder) AsSingleton() *VariantBuilder {
	b.opts = append(b.opts, AsSingleton())
	return b
}

// Give registers the variant with the accumulated discriminator.
func (b *VariantBuilder) Give(f Factory) {
	b.container.RegisterVariant(b.key, f, b.disc, b.opts...)
}

// GiveValue is a shorthand for Give when the variant is a pre-built value.
//
//	c.When(themeKey).AtPath("/docs").GiveValue(&DocsTheme{})
func (b *VariantBuilder) GiveValue(value any) {
	b.Give(func(_ *Container, _ *component.ResolutionContext) (any, error) { return value, nil })
}

// GiveType registers the variant as an injector-constructed type.
func (b *VariantBuilder) GiveType() {
	opts := append([]Option{DiscriminatedBy(b.disc)}, b.opts...)
	b.container.RegisterType(b.key, opts...)
}

// Package validation validates configuration values.
//
// Struct tag validation uses go-playground/validator and reports fields by
// their config key:
//
//	type PrefetchConfig struct {
//	    Depth int `mapstructure:"depth" validate:"gte=2"`
//	}
//	err := validation.Validate(cfg) // "prefetch.depth: must be greater than or equal to 2"
//
// Checks spanning several fields go through a Validator:
//
//	v := validation.New()
//	v.OpenUnit("split.ratios", ratios).MaxSum("split.ratios", ratios, 1, 1e-9)
//	if appErr := v.Validate(); appErr != nil { ... }
package validation

package config

import "context"

// Theme is the user's display preference. It is loaded once from config and
// handed to the presentation layer; the data layer never reads it.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether the theme is one of the supported values.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

type themeKey struct{}

// WithTheme returns a context carrying the display preference.
func WithTheme(ctx context.Context, t Theme) context.Context {
	return context.WithValue(ctx, themeKey{}, t)
}

// ThemeFrom returns the display preference carried by ctx, or ThemeLight.
func ThemeFrom(ctx context.Context) Theme {
	if t, ok := ctx.Value(themeKey{}).(Theme); ok {
		return t
	}
	return ThemeLight
}

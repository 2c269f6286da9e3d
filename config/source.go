package config

// Source indicates where a configuration value came from.
type Source string

// Configuration source constants.
const (
	// SourceDefault indicates the value is a built-in default.
	SourceDefault Source = "default"

	// SourceFile indicates the value came from one of the resolver's config files.
	SourceFile Source = "file"

	// SourceEnv indicates the value came from an environment variable.
	SourceEnv Source = "env"

	// SourceOverride indicates the value was set explicitly by the caller,
	// typically from a command-line flag.
	SourceOverride Source = "override"
)

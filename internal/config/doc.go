// Package config loads the declared container set for the denver CLI.
//
// A configuration file names the container engine address and a map of
// container definitions keyed by name. YAML is the primary format (parsed
// with gopkg.in/yaml.v3); files ending in .json or .jsonc are accepted too,
// with comments and trailing commas stripped by github.com/tidwall/jsonc
// before decoding.
//
// Loading resolves every path in the file to an absolute path (relative
// paths are taken relative to the configuration file, "~" expands to the
// user's home directory), applies defaults, parses run flags into
// model.RunFlags, and validates the result. Malformed configuration is
// reported as a model.KindConfig error.
package config

// Package config loads immutable startup-time configuration from environment
// variables and YAML files.
//
// Environment loading is type-cached: each configuration struct type is parsed
// exactly once per process, which guarantees the "immutable after startup"
// property relied on by the tenant resolution and isolation subsystems.
package config

// Package config loads settings for the gophauth CLI: defaults, then an
// optional JSON file (-c/-config), then short command-line flags.
package config

// Package config holds the settings of the rainbow command.
//
// Values are resolved in this order, later sources winning: built-in
// defaults, the YAML file (.rainbow.yaml), a .env file in the working
// directory, RAINBOW_* environment variables, and finally command line flags.
// Flags are applied by the cmd package; everything before them lives here.
package config

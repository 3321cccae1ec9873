// SPDX-License-Identifier: MPL-2.0

// Package config loads chatpack settings with Viper, using CUE as the file
// format.
//
// Values are layered: built-in defaults, then config.cue (from the user
// config directory, or the working directory, or an explicit --config path),
// then CHATPACK_* environment variables such as CHATPACK_SERVER_PORT. The file
// is validated against the embedded config_schema.cue before it is merged.
package config

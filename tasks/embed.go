// Package tasks embeds the built-in task sources. A tasks_dir configured on
// disk replaces them entirely.
package tasks

import "embed"

// FS holds base.json, the per-manager sources and optional.json.
//
//go:embed *.json
var FS embed.FS

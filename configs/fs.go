// Package configs embeds the default runtime files the installer seeds.
package configs

import "embed"

//go:embed character.yaml mcp.json
var FS embed.FS

package testdata

import "embed"

//go:embed inspect/*/input.sql inspect/*/expected.json inspect/*/expected.csv
var InspectCases embed.FS

// GetFS returns the embedded filesystem
func GetFS() embed.FS {
	return InspectCases
}

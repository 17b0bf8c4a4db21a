package skill

import (
	"embed"
	"io/fs"
)

//go:embed all:files
var selfFS embed.FS

// SelfFS returns a filesystem rooted at skillctl's own skill files, used by
// "skillctl agent install" to install the tool's skill into agent homes.
func SelfFS() (fs.FS, error) {
	return fs.Sub(selfFS, "files")
}

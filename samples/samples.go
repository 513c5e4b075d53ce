// Package samples ships the two reference site configurations. They disagree
// on title, subtitle and contact format; neither is authoritative.
package samples

import "embed"

// FS holds lumen.yaml and kevin.yaml.
//
//go:embed *.yaml
var FS embed.FS

// Names of the bundled files.
const (
	Lumen = "lumen.yaml"
	Kevin = "kevin.yaml"
)

// Read returns the raw bytes of a bundled sample.
func Read(name string) ([]byte, error) {
	return FS.ReadFile(name)
}

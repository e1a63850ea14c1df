// Package usfm provides the marker metadata service: a closed catalog of
// backslash-mnemonic markers and queries over their structural roles.
//
// The catalog is data, not code. A default catalog is embedded; callers can
// load a replacement from YAML when a project defines additional markers.
package usfm

import (
	_ "embed"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	rerr "github.com/FocuswithJustin/RowanText/core/errors"
)

//go:embed markers.yaml
var defaultCatalog []byte

// catalogFile is the YAML shape of a marker catalog.
type catalogFile struct {
	Paragraph []string `yaml:"paragraph"`
	Newline   []string `yaml:"newline"`
	Character []string `yaml:"character"`
	Internal  []string `yaml:"internal"`
}

// Registry answers marker-classification queries against one catalog.
type Registry struct {
	paragraph map[string]bool
	newline   map[string]bool
	character map[string]bool
	internal  map[string]bool
}

// Default returns a Registry over the embedded catalog.
// The embedded catalog is known-good, so failure is a programming error.
func Default() *Registry {
	r, err := Parse(defaultCatalog)
	if err != nil {
		panic("usfm: embedded marker catalog is invalid: " + err.Error())
	}
	return r
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rerr.NewIO("read", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, rerr.Wrapf(err, "loading marker catalog %s", path)
	}
	return r, nil
}

// Parse builds a Registry from YAML catalog data.
func Parse(data []byte) (*Registry, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, rerr.NewParse("YAML", "", err.Error())
	}
	r := &Registry{
		paragraph: toSet(file.Paragraph),
		newline:   toSet(file.Newline),
		character: toSet(file.Character),
		internal:  toSet(file.Internal),
	}
	if len(r.paragraph) == 0 && len(r.newline) == 0 && len(r.character) == 0 {
		return nil, rerr.NewParse("YAML", "", "marker catalog is empty")
	}
	return r, nil
}

func toSet(markers []string) map[string]bool {
	set := make(map[string]bool, len(markers))
	for _, m := range markers {
		m = strings.TrimPrefix(strings.TrimSpace(m), "\\")
		if m != "" {
			set[m] = true
		}
	}
	return set
}

// IsParagraphMarker reports whether marker opens a paragraph-level container.
func (r *Registry) IsParagraphMarker(marker string) bool {
	return r.paragraph[normalize(marker)]
}

// IsNewlineMarker reports whether marker begins a new canonical line.
// Paragraph markers always do.
func (r *Registry) IsNewlineMarker(marker string) bool {
	m := normalize(marker)
	return r.paragraph[m] || r.newline[m]
}

// IsCharacterMarker reports whether marker is an inline character marker.
func (r *Registry) IsCharacterMarker(marker string) bool {
	return r.character[normalize(marker)]
}

// IsInternalMarker reports whether marker is only legal inside note content.
func (r *Registry) IsInternalMarker(marker string) bool {
	return r.internal[normalize(marker)]
}

// IsKnownMarker reports whether marker appears anywhere in the catalog.
func (r *Registry) IsKnownMarker(marker string) bool {
	m := normalize(marker)
	return r.paragraph[m] || r.newline[m] || r.character[m] || r.internal[m]
}

// Markers returns every marker in the catalog, sorted.
func (r *Registry) Markers() []string {
	seen := make(map[string]bool)
	for _, set := range []map[string]bool{r.paragraph, r.newline, r.character, r.internal} {
		for m := range set {
			seen[m] = true
		}
	}
	out := make([]string, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// normalize strips the leading backslash and any trailing close star so both
// "\\nd" and "nd*" resolve to the catalog entry "nd".
func normalize(marker string) string {
	marker = strings.TrimPrefix(marker, "\\")
	marker = strings.TrimSuffix(marker, "*")
	return marker
}

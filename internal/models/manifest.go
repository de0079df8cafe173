package models

import (
	_ "embed"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

//go:embed embedded_manifest.json
var embeddedManifest []byte

// Variant describes one downloadable model artefact.
type Variant struct {
	File      string `json:"file"`
	URL       string `json:"url"`
	SHA256    string `json:"sha256,omitempty"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

// Manifest maps variant names to model artefacts.
type Manifest struct {
	Variants map[string]Variant `json:"variants"`
}

// DefaultManifest returns the manifest embedded at build time.
func DefaultManifest() (Manifest, error) {
	return LoadManifest(bytes.NewReader(embeddedManifest))
}

// LoadManifest decodes a manifest from r.
func LoadManifest(r io.Reader) (Manifest, error) {
	var manifest Manifest
	if err := json.NewDecoder(r).Decode(&manifest); err != nil {
		return Manifest{}, fmt.Errorf("models: decode manifest: %w", err)
	}
	if len(manifest.Variants) == 0 {
		return Manifest{}, fmt.Errorf("models: manifest has no variants")
	}
	return manifest, nil
}

// Variant looks up a variant by name.
func (m Manifest) Variant(name string) (Variant, error) {
	variant, ok := m.Variants[name]
	if !ok {
		return Variant{}, fmt.Errorf("models: unknown variant %q (known: %v)", name, m.VariantNames())
	}
	if variant.File == "" {
		return Variant{}, fmt.Errorf("models: variant %q has no file name", name)
	}
	return variant, nil
}

// VariantNames returns the sorted variant names.
func (m Manifest) VariantNames() []string {
	names := make([]string, 0, len(m.Variants))
	for name := range m.Variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

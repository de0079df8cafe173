package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/moeffju/transcribee/internal/models"
)

// Refreshes size and checksum fields of the embedded manifest by downloading
// each variant once. Run after bumping a variant URL.
func main() {
	manifestPath := flag.String("manifest", "internal/models/embedded_manifest.json", "Path to manifest JSON to update")
	flag.Parse()

	manifest, err := readManifest(*manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "update_manifest: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: 10 * time.Minute}

	for _, name := range manifest.VariantNames() {
		variant := manifest.Variants[name]
		if variant.URL == "" {
			fmt.Printf("%s: skipping (no URL)\n", name)
			continue
		}

		fmt.Printf("%s: downloading %s...\n", name, variant.URL)
		written, sum, err := fetchDigest(client, variant.URL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
			continue
		}

		variant.SHA256 = sum
		variant.SizeBytes = written
		manifest.Variants[name] = variant

		fmt.Printf("%s: size=%d sha256=%s\n", name, written, sum)
	}

	if err := writeManifest(*manifestPath, manifest); err != nil {
		fmt.Fprintf(os.Stderr, "update_manifest: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Updated manifest written to %s\n", *manifestPath)
}

func readManifest(path string) (models.Manifest, error) {
	file, err := os.Open(path)
	if err != nil {
		return models.Manifest{}, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()

	manifest, err := models.LoadManifest(file)
	if err != nil {
		return models.Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	return manifest, nil
}

func fetchDigest(client *http.Client, url string) (int64, string, error) {
	resp, err := client.Get(url)
	if err != nil {
		return 0, "", fmt.Errorf("download error: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	hasher := sha256.New()
	written, err := io.Copy(hasher, resp.Body)
	if err != nil {
		return 0, "", fmt.Errorf("read error: %w", err)
	}
	return written, hex.EncodeToString(hasher.Sum(nil)), nil
}

func writeManifest(path string, manifest models.Manifest) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	defer out.Close()

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(manifest); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return nil
}

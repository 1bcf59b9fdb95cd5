// Package zip bundles rendered media into downloadable archives.
package zip

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ManifestName is the archive entry holding the JSON manifest.
const ManifestName = "manifest.json"

type Asset struct {
	Filename string
	MIME     string
	Data     []byte
}

// ArchiveAssets stores assets in order. Assets without a name or data are skipped.
func ArchiveAssets(assets []Asset) ([]byte, error) {
	return archive(assets, nil)
}

// ArchiveWithManifest stores assets followed by manifest encoded as JSON.
func ArchiveWithManifest(assets []Asset, manifest any) ([]byte, error) {
	raw, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("zip: encode manifest: %w", err)
	}
	return archive(assets, raw)
}

func archive(assets []Asset, manifest []byte) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	now := time.Now()
	for _, asset := range assets {
		if asset.Filename == "" || len(asset.Data) == 0 {
			continue
		}
		if err := add(zw, asset.Filename, asset.Data, now); err != nil {
			return nil, err
		}
	}
	if manifest != nil {
		if err := add(zw, ManifestName, manifest, now); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: close: %w", err)
	}
	return buf.Bytes(), nil
}

func add(zw *zip.Writer, name string, data []byte, modified time.Time) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modified})
	if err != nil {
		return fmt.Errorf("zip: create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("zip: write %s: %w", name, err)
	}
	return nil
}

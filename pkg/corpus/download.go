package corpus

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
)

// maxDatasetFile bounds each file extracted from a dataset archive.
const maxDatasetFile = 64 << 20

// EnsureDataset makes sure dir holds a dataset. When vocabulary.json is
// missing, the .tar.gz archive at archiveURL is downloaded and its
// vocabulary.json and text.json are extracted into dir. Other archive
// members are ignored, wherever they sit in the archive.
func EnsureDataset(ctx context.Context, client *http.Client, archiveURL, dir string) error {
	if _, err := os.Stat(filepath.Join(dir, VocabularyFile)); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if archiveURL == "" {
		return fmt.Errorf("dataset missing in %s and no download url configured", dir)
	}
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "milim-cli")
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("download dataset: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return extractDataset(resp.Body, dir)
}

// extractDataset stages every wanted member in a temporary file and moves
// them into dir only once the whole archive has been read. vocabulary.json
// is moved last since its presence marks the dataset complete.
func extractDataset(r io.Reader, dir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gz.Close()

	staged := map[string]string{}
	defer func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("error reading tar archive: %w", err)
		}
		if header.Typeflag != tar.TypeReg {
			continue
		}
		name := path.Base(header.Name)
		if name != VocabularyFile && name != TextsFile {
			continue
		}
		tmp, err := stageFile(dir, name, tr)
		if err != nil {
			return err
		}
		if prev, ok := staged[name]; ok {
			os.Remove(prev)
		}
		staged[name] = tmp
	}

	if _, ok := staged[VocabularyFile]; !ok {
		return fmt.Errorf("no %s found in downloaded archive", VocabularyFile)
	}
	for _, name := range []string{TextsFile, VocabularyFile} {
		tmp, ok := staged[name]
		if !ok {
			continue
		}
		if err := os.Rename(tmp, filepath.Join(dir, name)); err != nil {
			return err
		}
		delete(staged, name)
	}
	return nil
}

// stageFile copies r into a temporary file in dir and returns its path.
// Nothing is left behind on error.
func stageFile(dir, name string, r io.Reader) (string, error) {
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", err
	}

	n, err := io.Copy(tmp, io.LimitReader(r, maxDatasetFile+1))
	if err == nil && n > maxDatasetFile {
		err = fmt.Errorf("%s exceeds %d bytes", name, maxDatasetFile)
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return tmp.Name(), nil
}

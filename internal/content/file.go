package content

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed seed/*.yaml
var seedFS embed.FS

// BundleFile is the on-disk layout of one YAML bundle.
type BundleFile struct {
	Bundle Bundle `yaml:"bundle"`
	Items  []Item `yaml:"items"`
}

// ParseBundle decodes and validates a YAML bundle. Items inherit the
// bundle's subject, grade and id when they do not set their own.
func ParseBundle(data []byte) (*BundleFile, error) {
	var bf BundleFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("parse bundle: %w", err)
	}
	if bf.Bundle.ID == "" {
		return nil, errors.New("bundle has no id")
	}
	if bf.Bundle.Subject == "" {
		return nil, fmt.Errorf("bundle %s: no subject", bf.Bundle.ID)
	}

	var errs []error
	seen := make(map[string]bool, len(bf.Items))
	for i := range bf.Items {
		it := &bf.Items[i]
		it.BundleID = bf.Bundle.ID
		if it.Subject == "" {
			it.Subject = bf.Bundle.Subject
		}
		if it.Grade == 0 {
			it.Grade = bf.Bundle.Grade
		}
		if seen[it.ID] {
			errs = append(errs, fmt.Errorf("duplicate item id %q", it.ID))
		}
		seen[it.ID] = true
		// Unservable templates are kept in the pool; the hydrator filters them.
		if !IsAllowed(it.Template) {
			continue
		}
		if err := it.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("bundle %s: %w", bf.Bundle.ID, errors.Join(errs...))
	}
	bf.Bundle.ItemCount = len(bf.Items)
	return &bf, nil
}

// FileSource serves bundles read from a directory of YAML files.
type FileSource struct {
	bundles []Bundle
	items   map[string][]Item
}

// NewFileSource loads every *.yaml and *.yml file under fsys.
func NewFileSource(fsys fs.FS) (*FileSource, error) {
	src := &FileSource{items: make(map[string][]Item)}
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(path.Ext(p))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		bf, err := ParseBundle(data)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if _, dup := src.items[bf.Bundle.ID]; dup {
			return fmt.Errorf("%s: bundle %s defined twice", p, bf.Bundle.ID)
		}
		src.bundles = append(src.bundles, bf.Bundle)
		src.items[bf.Bundle.ID] = bf.Items
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	sort.SliceStable(src.bundles, func(i, j int) bool { return src.bundles[i].ID < src.bundles[j].ID })
	return src, nil
}

// LoadDir loads bundles from a directory on disk.
func LoadDir(dir string) (*FileSource, error) {
	return NewFileSource(os.DirFS(dir))
}

// Seed returns the bundles compiled into the binary.
func Seed() *FileSource {
	sub, err := fs.Sub(seedFS, "seed")
	if err != nil {
		panic(fmt.Sprintf("embedded content: %v", err))
	}
	src, err := NewFileSource(sub)
	if err != nil {
		panic(fmt.Sprintf("embedded content is invalid: %v", err))
	}
	return src
}

// SeedBundles returns the raw embedded bundle files keyed by name.
func SeedBundles() (map[string][]byte, error) {
	entries, err := seedFS.ReadDir("seed")
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(entries))
	for _, e := range entries {
		data, err := seedFS.ReadFile("seed/" + e.Name())
		if err != nil {
			return nil, err
		}
		out[e.Name()] = data
	}
	return out, nil
}

func (s *FileSource) ListBundles(_ context.Context, subject string, grade int) ([]Bundle, error) {
	var out []Bundle
	for _, b := range s.bundles {
		if b.Subject == subject && (grade == 0 || b.Grade == grade) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *FileSource) BundleDetail(_ context.Context, bundleID string) ([]Item, error) {
	items, ok := s.items[bundleID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", bundleID, ErrBundleNotFound)
	}
	return append([]Item(nil), items...), nil
}

func (s *FileSource) QueryBySubjectAndGrade(_ context.Context, subject string, grade int) ([]Item, error) {
	var out []Item
	for _, b := range s.bundles {
		for _, it := range s.items[b.ID] {
			if it.Subject == subject && (grade == 0 || it.Grade == grade) {
				out = append(out, it)
			}
		}
	}
	return out, nil
}

package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/conorfennell/dailyhabit/internal/apperrors"
	"github.com/conorfennell/dailyhabit/internal/gitsource"
	"github.com/conorfennell/dailyhabit/internal/parser"
)

// Source says where a catalog comes from. When Repo is set, Path is relative
// to the root of the repository's checkout under CheckoutDir.
type Source struct {
	Path        string
	Repo        string
	CheckoutDir string
}

// LoadFile reads a bundle from path. Files ending in .yaml or .yml are YAML;
// anything else is read as the text catalog format.
func LoadFile(path string) (Bundle, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return loadYAML(path)
	default:
		doc, err := parser.ParseFile(path)
		if err != nil {
			return Bundle{}, fmt.Errorf("failed to parse catalog %s: %w", path, err)
		}
		return Bundle{Version: doc.Version, Items: doc.Items}, nil
	}
}

func loadYAML(path string) (Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return Bundle{}, err
	}
	defer f.Close()

	var bundle Bundle
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&bundle); err != nil {
		return Bundle{}, fmt.Errorf("failed to decode catalog %s: %w", path, err)
	}
	return bundle, nil
}

// LoadSource loads the bundle described by src, fetching the git repository
// first when one is configured.
func LoadSource(ctx context.Context, src Source, log *zap.Logger) (Bundle, error) {
	if src.Path == "" {
		return Bundle{}, fmt.Errorf("%w: catalog path is required", apperrors.ErrInvalidInput)
	}
	if src.Repo == "" {
		return LoadFile(src.Path)
	}

	if filepath.IsAbs(src.Path) {
		return Bundle{}, fmt.Errorf("%w: catalog path %s must be relative to the repository", apperrors.ErrInvalidInput, src.Path)
	}

	checkout, err := gitsource.CheckoutPath(src.CheckoutDir, src.Repo)
	if err != nil {
		return Bundle{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	}
	if err := os.MkdirAll(filepath.Dir(checkout), 0o755); err != nil {
		return Bundle{}, fmt.Errorf("failed to create checkout directory: %w", err)
	}
	if err := gitsource.Sync(ctx, src.Repo, checkout, log); err != nil {
		return Bundle{}, err
	}

	bundle, err := LoadFile(filepath.Join(checkout, src.Path))
	if errors.Is(err, os.ErrNotExist) {
		return Bundle{}, fmt.Errorf("catalog %s not found in %s: %w", src.Path, src.Repo, err)
	}
	return bundle, err
}

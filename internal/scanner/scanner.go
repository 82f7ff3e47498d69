package scanner

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/kpauljoseph/ankiforge/internal/source"
	"github.com/kpauljoseph/ankiforge/pkg/logger"
)

type SourceFile struct {
	AbsolutePath string
	RelativePath string
}

type DirectoryScanner struct {
	logger *logger.Logger
}

func New(log *logger.Logger) *DirectoryScanner {
	if log == nil {
		log = logger.Nop()
	}
	return &DirectoryScanner{logger: log}
}

// FindSources walks dir and returns every document with a supported
// extension, sorted by relative path.
func (s *DirectoryScanner) FindSources(ctx context.Context, dir string) ([]SourceFile, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "resolving %s", dir)
	}

	var files []SourceFile
	err = filepath.Walk(absDir, func(path string, info os.FileInfo, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return eris.Wrapf(err, "error accessing path %s", path)
		}

		if info.IsDir() {
			s.logger.Debug("Scanning directory: %s", path)
			return nil
		}

		if !source.IsSupported(path) {
			return nil
		}

		relPath, err := filepath.Rel(absDir, path)
		if err != nil {
			relPath = filepath.Base(path)
		}
		s.logger.Debug("Found source (%d): %s", len(files)+1, relPath)
		files = append(files, SourceFile{AbsolutePath: path, RelativePath: relPath})
		return nil
	})

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	if len(files) == 0 {
		return nil, eris.Errorf("no supported documents found in %s or its subdirectories", dir)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].RelativePath < files[j].RelativePath
	})
	return files, nil
}

package corpus

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/mikey/bayes-spam-filter/internal/core"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// FSReader reads a flat directory of one-email-per-file documents
type FSReader struct {
	fs       afero.Fs
	encoding encoding.Encoding
	less     func(a, b string) bool
	logger   *zap.Logger
}

// NewFSReader creates a corpus reader. encodingName is any WHATWG label
// ("utf-8", "latin1", "windows-1252", ...); sortOrder is "natural" or "lexical".
func NewFSReader(fs afero.Fs, encodingName string, sortOrder string, logger *zap.Logger) (*FSReader, error) {
	enc, err := htmlindex.Get(encodingName)
	if err != nil {
		return nil, fmt.Errorf("unsupported corpus encoding %q: %w", encodingName, err)
	}
	less, err := LessFunc(sortOrder)
	if err != nil {
		return nil, err
	}
	return &FSReader{
		fs:       fs,
		encoding: enc,
		less:     less,
		logger:   logger,
	}, nil
}

// ReadDocuments returns the regular files of dir, decoded and sorted
func (r *FSReader) ReadDocuments(ctx context.Context, dir string) ([]core.Document, error) {
	entries, err := afero.ReadDir(r.fs, dir)
	if err != nil {
		return nil, &core.CorpusError{Path: dir, Err: err}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Mode().IsRegular() {
			r.logger.Debug("Skipping non-regular corpus entry",
				zap.String("dir", dir),
				zap.String("name", entry.Name()))
			continue
		}
		names = append(names, entry.Name())
	}
	sort.SliceStable(names, func(i, j int) bool { return r.less(names[i], names[j]) })

	decoder := r.encoding.NewDecoder()
	docs := make([]core.Document, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(dir, name)
		raw, err := afero.ReadFile(r.fs, path)
		if err != nil {
			return nil, &core.CorpusError{Path: path, Err: err}
		}
		text, err := decoder.Bytes(raw)
		if err != nil {
			return nil, &core.CorpusError{Path: path, Err: fmt.Errorf("failed to decode: %w", err)}
		}
		docs = append(docs, core.Document{Name: name, Text: string(text)})
	}

	return docs, nil
}

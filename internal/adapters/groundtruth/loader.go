package groundtruth

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mikey/bayes-spam-filter/internal/core"
	"github.com/spf13/afero"
)

// FileSource reads labels from a "<name> <label>" text file, one per line,
// in the same order as the sorted test documents.
type FileSource struct {
	fs   afero.Fs
	path string
}

// NewFileSource creates a label source for path on fs
func NewFileSource(fs afero.Fs, path string) *FileSource {
	return &FileSource{fs: fs, path: path}
}

// Labels parses the label file. Blank lines are skipped; any other line
// lacking a "ham" or "spam" second field is an error.
func (s *FileSource) Labels(ctx context.Context) ([]core.GroundTruth, error) {
	raw, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, &core.CorpusError{Path: s.path, Err: err}
	}
	return Parse(raw)
}

// Parse returns the file name and label (first and second whitespace
// delimited fields) of every line
func Parse(raw []byte) ([]core.GroundTruth, error) {
	var labels []core.GroundTruth
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: line %d has no label field", core.ErrMalformedGroundTruth, lineNo)
		}
		label, err := core.ParseLabel(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", core.ErrMalformedGroundTruth, lineNo, err)
		}
		labels = append(labels, core.GroundTruth{Name: fields[0], Label: label})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan labels: %w", err)
	}
	return labels, nil
}

package fileproc

import (
	"context"

	"github.com/panbanda/tangle/pkg/parser"
	"github.com/panbanda/tangle/pkg/source"
)

// ErrFileTooLarge is recorded for files above the size limit.
var ErrFileTooLarge = source.ErrTooLarge

// LoadUnits reads and parses files from src in parallel and returns them as
// a Set in input order. A file that cannot be read, or exceeds maxSize
// bytes (0 means no limit), is added without a tree and reported in the
// returned failures. Syntax errors are not failures.
func LoadUnits(ctx context.Context, files []string, src source.ContentSource, maxSize int64) (*source.Set, Failures) {
	set := source.NewSet()
	units, failed := Map(ctx, files, func(psr *parser.Parser, path string) (*source.Unit, error) {
		return source.Load(psr, src, path, maxSize)
	})

	for _, f := range failed {
		u := source.NewUnit(f.Path, nil, nil)
		u.ParseErr = f.Err
		units[f.Index] = u
	}
	for _, u := range units {
		set.Add(u)
	}
	return set, failed
}

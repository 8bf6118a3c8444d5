package normalize

import (
	"golang.org/x/sync/errgroup"

	"github.com/dfinance/move-tools/internal/file"
	"github.com/dfinance/move-tools/internal/sourcemap"
)

// Project normalizes a set of target files and their dependencies.
type Project struct {
	Normalizer *Normalizer
	// Parallelism bounds how many files are normalized at once. Zero or
	// one means sequential.
	Parallelism int
	Cache       *Cache
}

// Output is the result of normalizing a project. Files holds only the files
// that succeeded, targets first, in input order.
type Output struct {
	Files    []Normalized
	Targets  int
	Offsets  *sourcemap.ProjectOffsetMap
	Comments CommentMap
}

type fileResult struct {
	normalized Normalized
	err        *sourcemap.ExecError
}

// Normalize attempts every file, targets first and then dependencies, and
// never stops at the first failure. The returned ExecError is nil when all
// files succeeded; otherwise it lists the failures in input order and
// shares Output.Offsets, which holds complete entries for succeeded files
// and partial ones for files that failed part way.
func (p *Project) Normalize(targets, deps []file.File) (*Output, *sourcemap.ExecError) {
	all := make([]file.File, 0, len(targets)+len(deps))
	all = append(all, targets...)
	all = append(all, deps...)

	results := make([]fileResult, len(all))
	var g errgroup.Group
	if p.Parallelism > 1 {
		g.SetLimit(p.Parallelism)
	} else {
		g.SetLimit(1)
	}
	for i, f := range all {
		g.Go(func() error {
			results[i] = p.normalizeOne(f)
			return nil
		})
	}
	_ = g.Wait()

	out := &Output{
		Offsets:  sourcemap.NewProjectOffsetMap(),
		Comments: make(CommentMap),
	}
	failed := sourcemap.NewExecError(nil, out.Offsets)
	failedFiles := 0
	for i, res := range results {
		if res.err != nil {
			failed.Extend(res.err)
			failedFiles++
			continue
		}
		out.Files = append(out.Files, res.normalized)
		out.Offsets.Insert(res.normalized.File.Path, res.normalized.Offsets)
		if len(res.normalized.Comments) > 0 {
			out.Comments[res.normalized.File.Path] = res.normalized.Comments
		}
		if i < len(targets) {
			out.Targets++
		}
	}

	if failed.Empty() {
		return out, nil
	}
	log.Infof("normalization failed for %d of %d files", failedFiles, len(all))
	return out, failed
}

func (p *Project) normalizeOne(f file.File) fileResult {
	if cached, ok := p.Cache.get(p.Normalizer, f); ok {
		return fileResult{normalized: cached}
	}
	normalized, err := p.Normalizer.NormalizeFile(f)
	if err != nil {
		return fileResult{err: err}
	}
	p.Cache.add(p.Normalizer, f, normalized)
	return fileResult{normalized: normalized}
}

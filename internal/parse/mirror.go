package parse

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/foodwatch-nsw/offences-cli/internal/model"
)

// mirrorHost is the directory layout the scrape mirror uses.
const mirrorHost = "www.foodauthority.nsw.gov.au"

var numericName = regexp.MustCompile(`^\d+$`)

// PenaltyPagePath returns where a penalty notice page lives in a scrape
// mirror. The fetch stage writes pages here; Mirror reads them back.
func PenaltyPagePath(dir, id string) string {
	return filepath.Join(dir, mirrorHost, "offences", "penalty-notices", id)
}

// MirrorResult is the outcome of parsing a scrape mirror.
type MirrorResult struct {
	Notices      []*model.Notice
	Penalties    int
	Prosecutions int
	Errors       int
}

// Mirror parses every offence page under a scrape mirror directory:
// numeric-named files under offences/penalty-notices and slug-named files
// under offences/prosecutions. Files parse concurrently; the result is
// ordered by file name so repeated runs produce identical output. A file
// that fails to parse is logged and counted, never fatal.
func Mirror(ctx context.Context, dir string, workers int) (*MirrorResult, error) {
	penaltyFiles, err := listFiles(filepath.Join(dir, mirrorHost, "offences", "penalty-notices"), true)
	if err != nil {
		return nil, err
	}
	prosecutionFiles, err := listFiles(filepath.Join(dir, mirrorHost, "offences", "prosecutions"), false)
	if err != nil {
		return nil, err
	}

	if workers <= 0 {
		workers = 1
	}

	res := &MirrorResult{}
	penalties := parseAll(ctx, penaltyFiles, workers, func(data []byte, _ string) (*model.Notice, error) {
		return PenaltyNotice(data)
	})
	prosecutions := parseAll(ctx, prosecutionFiles, workers, ProsecutionNotice)

	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "parse: mirror cancelled")
	}

	for _, n := range penalties {
		if n == nil {
			res.Errors++
			continue
		}
		res.Penalties++
		res.Notices = append(res.Notices, n)
	}
	for _, n := range prosecutions {
		if n == nil {
			res.Errors++
			continue
		}
		res.Prosecutions++
		res.Notices = append(res.Notices, n)
	}
	return res, nil
}

// listFiles returns the sorted regular files in dir. A missing directory is
// an empty listing, not an error: a mirror may hold only one notice kind.
func listFiles(dir string, numericOnly bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		zap.L().Warn("mirror directory missing", zap.String("dir", dir))
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "parse: read dir %s", dir)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if numericOnly && !numericName.MatchString(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// parseAll runs fn over the files with bounded concurrency. The returned
// slice is position-aligned with files; a nil entry is a file that failed.
func parseAll(ctx context.Context, files []string, workers int, fn func(data []byte, name string) (*model.Notice, error)) []*model.Notice {
	out := make([]*model.Notice, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				zap.L().Warn("unreadable page", zap.String("file", path), zap.Error(err))
				return nil
			}
			n, err := fn(data, filepath.Base(path))
			if err != nil {
				zap.L().Warn("unparseable page", zap.String("file", path), zap.Error(err))
				return nil
			}
			out[i] = n
			return nil
		})
	}
	// Workers only return context errors; the caller checks ctx itself.
	_ = g.Wait()

	return out
}

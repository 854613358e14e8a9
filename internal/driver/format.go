package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"github.com/BendyLand/blfmt-sub000/internal/cst"
	"github.com/BendyLand/blfmt-sub000/internal/diag"
	"github.com/BendyLand/blfmt-sub000/internal/format"
	"github.com/BendyLand/blfmt-sub000/internal/observ"
	"github.com/BendyLand/blfmt-sub000/internal/source"
	"github.com/BendyLand/blfmt-sub000/internal/testkit"
)

var (
	// ErrNoSourceFiles is returned when the given paths hold no C or C++ files.
	ErrNoSourceFiles = errors.New("driver: no source files found")
	// ErrUnsupportedExt is set on a result whose language cannot be told.
	ErrUnsupportedExt = errors.New("unsupported file extension")
	// ErrVerifyFailed is set on a result that failed the --verify checks.
	ErrVerifyFailed = errors.New("formatted output failed verification")
)

// FormatOptions configures code formatting.
type FormatOptions struct {
	Check          bool
	Stdout         bool
	Verify         bool
	MaxDiagnostics int
	Jobs           int
	// Lang overrides extension based detection when set.
	Lang    cst.Language
	Options format.Options
	// Exclude holds glob patterns matched against base names and slash paths.
	Exclude []string
	Cache   *DiskCache
	Events  chan<- Event
	Timer   *observ.Timer
}

// FormatResult captures the result of formatting a single file.
type FormatResult struct {
	Path        string
	File        source.FileID
	Changed     bool
	Cached      bool
	Err         error
	Formatted   []byte
	Diagnostics []diag.Diagnostic
}

// Batch is the outcome of one run. Files resolves the spans of all diagnostics.
type Batch struct {
	Files   *source.FileSet
	Results []FormatResult
}

// Failed counts results with an error.
func (b *Batch) Failed() int {
	n := 0
	for i := range b.Results {
		if b.Results[i].Err != nil {
			n++
		}
	}
	return n
}

// Changed counts results whose content differs from the formatted output.
func (b *Batch) Changed() int {
	n := 0
	for i := range b.Results {
		if b.Results[i].Changed {
			n++
		}
	}
	return n
}

// FormatPaths formats provided files or directories (recursively collecting C and C++ files).
// When opts.Check is true, files are not modified; Changed indicates whether formatting
// would update the file contents. When opts.Stdout is true, formatted content is returned
// in the results without touching files on disk.
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := observ.Logger(ctx)

	files, err := collectSourceFiles(ctx, paths, opts.Exclude)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoSourceFiles
	}
	log.Debug("collected source files", "count", len(files))

	// файлы загружаются последовательно, FileSet не потокобезопасен
	fileSet := source.NewFileSetWithBase("")
	fileIDs := make([]source.FileID, len(files))
	loadErrors := make(map[int]error)
	stop := opts.Timer.Begin("load")
	for i, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			// пустая запись, чтобы диагностика указывала на этот путь
			loadErrors[i] = err
			id = fileSet.AddVirtual(path, nil)
		}
		fileIDs[i] = id
	}
	stop()

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]FormatResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			emit(gctx, opts.Events, Event{Kind: EventStarted, Index: i, Total: len(files), Path: path})

			var res FormatResult
			if loadErr, failed := loadErrors[i]; failed {
				res = FormatResult{
					Path: path,
					File: fileIDs[i],
					Err:  loadErr,
					Diagnostics: []diag.Diagnostic{
						diag.NewError(diag.IOLoadFileError, source.Span{File: fileIDs[i]}, "failed to load file: "+loadErr.Error()),
					},
				}
			} else {
				res = formatOne(gctx, fileSet.Get(fileIDs[i]), opts)
				if res.Err == nil && res.Changed && !opts.Check && !opts.Stdout {
					writeResult(&res, opts.Timer)
				}
			}
			results[i] = res

			log.Debug("formatted", "path", path, "changed", res.Changed, "cached", res.Cached, "err", res.Err)
			emit(gctx, opts.Events, Event{
				Kind: EventFinished, Index: i, Total: len(files), Path: path,
				Changed: res.Changed, Cached: res.Cached, Err: res.Err,
			})
			return nil
		})
	}
	batch := &Batch{Files: fileSet, Results: results}
	if err := g.Wait(); err != nil {
		return batch, err
	}
	log.Debug("batch done", "files", len(files), "changed", batch.Changed(), "failed", batch.Failed())
	return batch, nil
}

// FormatSource formats src read from somewhere other than a file, such as stdin.
// Nothing is written; the output is in the single result's Formatted field.
func FormatSource(ctx context.Context, name string, src []byte, opts FormatOptions) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fileSet := source.NewFileSetWithBase("")
	sf := fileSet.Get(fileSet.AddBytes(name, src))
	res := formatOne(ctx, sf, opts)
	return &Batch{Files: fileSet, Results: []FormatResult{res}}, nil
}

func formatOne(ctx context.Context, sf *source.File, opts FormatOptions) (res FormatResult) {
	res = FormatResult{Path: sf.Path, File: sf.ID}
	maxDiag := opts.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = 256
	}
	bag := diag.NewBag(maxDiag)
	defer func() {
		bag.Sort()
		res.Diagnostics = bag.Items()
		if n := bag.Dropped(); n > 0 {
			observ.Logger(ctx).Warn("diagnostics truncated", "path", sf.Path, "kept", bag.Len(), "dropped", n)
		}
	}()

	lang := opts.Lang
	if lang == cst.LangUnknown {
		lang = cst.LanguageForPath(sf.Path)
	}
	if lang == cst.LangUnknown {
		res.Err = fmt.Errorf("%s: %w", sf.Path, ErrUnsupportedExt)
		bag.Add(diag.NewError(diag.IOUnsupportedExt, source.Span{File: sf.ID}, res.Err.Error()))
		return res
	}

	key := KeyFor(sf.Content, lang, opts.Options)
	if !opts.Verify {
		entry, ok, err := opts.Cache.Get(key)
		if err != nil {
			observ.Logger(ctx).Warn("cache read failed", "path", sf.Path, "err", err)
		}
		if ok {
			res.Cached = true
			report := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
			for _, d := range fromCached(entry.Diagnostics, sf.ID) {
				report.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
			}
			res.finish(sf, entry.Output)
			return res
		}
	}

	stop := opts.Timer.Begin("parse")
	root, err := cst.Parse(ctx, lang, sf.Content)
	stop()
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", sf.Path, err)
		return res
	}
	if root.HasError() {
		bag.Add(diag.NewWarning(diag.FmtParseError, firstErrorSpan(root, sf.ID), "source has syntax errors; affected regions are kept verbatim"))
	}

	stop = opts.Timer.Begin("render")
	out, err := format.FormatFile(sf, root, opts.Options)
	stop()
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", sf.Path, err)
		return res
	}
	// один и тот же узел может быть отвергнут на нескольких уровнях
	report := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	for _, fd := range out.Diagnostics {
		d := fd.Diag()
		report.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
	}

	if opts.Verify {
		stop = opts.Timer.Begin("verify")
		verified := verifyOutput(ctx, sf, lang, out.Text, opts.Options, bag)
		stop()
		if !verified {
			res.Err = fmt.Errorf("%s: %w", sf.Path, ErrVerifyFailed)
			res.finish(sf, out.Text)
			return res
		}
	}

	if opts.Cache != nil {
		entry := &CacheEntry{Output: out.Text, Diagnostics: toCached(bag.Items())}
		if err := opts.Cache.Put(key, entry); err != nil {
			bag.Add(diag.NewWarning(diag.IOCacheWriteFailed, source.Span{File: sf.ID}, "cache write failed: "+err.Error()))
		}
	}
	res.finish(sf, out.Text)
	return res
}

// finish records the output in the file's own line ending convention.
func (r *FormatResult) finish(sf *source.File, text []byte) {
	r.Changed = !bytes.Equal(text, sf.Content)
	r.Formatted = source.RestoreLineEndings(text, sf.Flags)
}

func writeResult(res *FormatResult, timer *observ.Timer) {
	defer timer.Begin("write")()
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(res.Path); statErr == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(res.Path, res.Formatted, mode.Perm()); err != nil {
		res.Err = fmt.Errorf("write %s: %w", res.Path, err)
		res.Diagnostics = append(res.Diagnostics,
			diag.NewError(diag.IOWriteFileError, source.Span{File: res.File}, res.Err.Error()))
	}
}

func firstErrorSpan(root *cst.Node, file source.FileID) source.Span {
	span := source.Span{File: file, Start: root.Start, End: root.Start}
	found := false
	root.Walk(func(n *cst.Node) bool {
		if found {
			return false
		}
		if n.IsError() {
			span.Start, span.End = n.Start, n.End
			found = true
			return false
		}
		return true
	})
	return span
}

// verifyOutput checks that formatting kept every token and that a second
// pass is a no-op. Failures are added to bag as errors.
func verifyOutput(ctx context.Context, sf *source.File, lang cst.Language, out []byte, opt format.Options, bag *diag.Bag) bool {
	end, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		end = 0
	}
	whole := source.Span{File: sf.ID, Start: 0, End: end}
	ok := true

	before, err := testkit.Tokens(ctx, lang, sf.Content)
	if err == nil {
		var after []string
		after, err = testkit.Tokens(ctx, lang, out)
		if err == nil {
			err = testkit.CompareTokenMultiset(before, after)
		}
	}
	if err != nil {
		bag.Add(diag.NewError(diag.FmtTokensChanged, whole, err.Error()))
		ok = false
	}

	again := func(src []byte) ([]byte, error) {
		return formatBytes(ctx, sf.Path, src, lang, opt)
	}
	if err := testkit.CheckIdempotent(sf.Content, again); err != nil {
		bag.Add(diag.NewError(diag.FmtNotIdempotent, whole, err.Error()))
		ok = false
	}
	return ok
}

func formatBytes(ctx context.Context, path string, src []byte, lang cst.Language, opt format.Options) ([]byte, error) {
	root, err := cst.Parse(ctx, lang, src)
	if err != nil {
		return nil, err
	}
	fileSet := source.NewFileSetWithBase("")
	res, err := format.FormatFile(fileSet.Get(fileSet.AddVirtual(path, src)), root, opt)
	if err != nil {
		return nil, err
	}
	return res.Text, nil
}

func collectSourceFiles(ctx context.Context, paths, exclude []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// недоступный путь становится записью с ошибкой, остальные файлы форматируются
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			addFile(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				addFile(path)
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && (strings.HasPrefix(d.Name(), ".") || excluded(path, exclude)) {
					return filepath.SkipDir
				}
				return nil
			}
			if cst.LanguageForPath(path) != cst.LangUnknown && !excluded(path, exclude) {
				addFile(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

func excluded(path string, patterns []string) bool {
	slashed := filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, pat := range patterns {
		if ok, _ := filepath.Match(pat, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pat, slashed); ok {
			return true
		}
	}
	return false
}

package diagfmt

import (
	"io"

	"github.com/BendyLand/blfmt-sub000/internal/diag"
	"github.com/BendyLand/blfmt-sub000/internal/source"
)

// FileReport is the outcome of formatting one file as seen by the output layer.
type FileReport struct {
	Path        string
	Changed     bool
	Cached      bool
	Err         error
	Diagnostics []diag.Diagnostic
}

// FileJSON is one file entry of the JSON run report.
type FileJSON struct {
	Path        string           `json:"path"`
	Changed     bool             `json:"changed"`
	Cached      bool             `json:"cached,omitempty"`
	Error       string           `json:"error,omitempty"`
	Diagnostics []DiagnosticJSON `json:"diagnostics,omitempty"`
}

// RunJSON is the root of the JSON run report.
type RunJSON struct {
	Files   []FileJSON `json:"files"`
	Changed int        `json:"changed"`
	Failed  int        `json:"failed"`
}

// BuildRun converts per-file reports into the JSON run report.
func BuildRun(files []FileReport, fs *source.FileSet, opts JSONOpts) RunJSON {
	out := RunJSON{Files: make([]FileJSON, 0, len(files))}
	for _, f := range files {
		entry := FileJSON{
			Path:        f.Path,
			Changed:     f.Changed,
			Cached:      f.Cached,
			Diagnostics: BuildDiagnostics(f.Diagnostics, fs, opts),
		}
		if f.Err != nil {
			entry.Error = f.Err.Error()
			out.Failed++
		}
		if f.Changed {
			out.Changed++
		}
		out.Files = append(out.Files, entry)
	}
	return out
}

// Run writes the JSON run report.
func Run(w io.Writer, files []FileReport, fs *source.FileSet, opts JSONOpts) error {
	return encode(w, BuildRun(files, fs, opts))
}

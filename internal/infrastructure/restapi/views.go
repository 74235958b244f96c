package restapi

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"sync"
	"sync/atomic"
	"time"

	"houses_market/internal/pkg/metrics"
	"houses_market/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
)

// ViewFiles holds the page templates served by the frontend routes.
//
//go:embed views/*.html
var ViewFiles embed.FS

// ViewsFS is ViewFiles rooted at the views directory.
func ViewsFS() fs.FS {
	sub, err := fs.Sub(ViewFiles, "views")
	if err != nil {
		panic(fmt.Sprintf("embedded views missing: %v", err))
	}
	return sub
}

var viewFuncs = template.FuncMap{
	"eth": utils.FormatWei,
	"addr": func(a *common.Address) string {
		if a == nil {
			return ""
		}
		return a.Hex()
	},
	"when": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	},
}

// LazyView parses its template on first Resolve and reuses the result afterwards.
// A failed parse is remembered and returned on every call.
type LazyView struct {
	name  string
	fsys  fs.FS
	file  string
	once  sync.Once
	tmpl  *template.Template
	err   error
	loads atomic.Int32
}

// NewLazyView creates an unresolved view backed by file in fsys.
func NewLazyView(name string, fsys fs.FS, file string) *LazyView {
	return &LazyView{name: name, fsys: fsys, file: file}
}

// Resolve returns the parsed template, parsing it on the first call.
func (v *LazyView) Resolve() (*template.Template, error) {
	v.once.Do(func() {
		v.loads.Add(1)
		v.tmpl, v.err = template.New(v.file).Funcs(viewFuncs).ParseFS(v.fsys, v.file)
		if v.err != nil {
			v.err = fmt.Errorf("failed to resolve view %s: %w", v.name, v.err)
			metrics.ViewResolutions.WithLabelValues(v.name, "error").Inc()
			return
		}
		metrics.ViewResolutions.WithLabelValues(v.name, "ok").Inc()
	})
	return v.tmpl, v.err
}

// Loads reports how many times the template was parsed: 0 before first navigation, 1 after.
func (v *LazyView) Loads() int {
	return int(v.loads.Load())
}

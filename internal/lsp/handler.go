package lsp

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dfinance/move-tools/internal/compiler"
	"github.com/dfinance/move-tools/internal/config"
	"github.com/dfinance/move-tools/internal/dialects"
	cerrors "github.com/dfinance/move-tools/internal/errors"
	"github.com/dfinance/move-tools/internal/file"
	"github.com/dfinance/move-tools/internal/normalize"
	"github.com/dfinance/move-tools/internal/toolchain"
)

// ConfigFile is looked up in the workspace root on initialize.
const ConfigFile = "movec.toml"

var log = commonlog.GetLogger("movec.lsp")

// Handler implements the language server. Every open document is checked
// as a target against the workspace dependencies on each change.
type Handler struct {
	mu        sync.Mutex
	documents map[string]string // clean path -> text
	root      string
	settings  config.Config
	dialect   dialects.Dialect

	toolchain toolchain.Toolchain
	cache     *normalize.Cache
}

// NewHandler validates the initial settings. They can be replaced by the
// workspace movec.toml on initialize.
func NewHandler(settings config.Config, tc toolchain.Toolchain) (*Handler, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	dialect, err := settings.BuildDialect()
	if err != nil {
		return nil, err
	}
	cache, err := normalize.NewCache(normalize.DefaultCacheSize)
	if err != nil {
		return nil, err
	}
	return &Handler{
		documents: make(map[string]string),
		settings:  settings,
		dialect:   dialect,
		toolchain: tc,
		cache:     cache,
	}, nil
}

// Initialize responds to the LSP client's initialize request and advertises the server's capabilities
func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Info("initialize")

	if params.RootURI != nil && *params.RootURI != "" {
		root, err := uriToPath(*params.RootURI)
		if err != nil {
			return nil, err
		}
		h.loadWorkspace(root)
	} else if params.RootPath != nil {
		h.loadWorkspace(*params.RootPath)
	}

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
			SemanticTokensProvider: &protocol.SemanticTokensOptions{
				Legend: protocol.SemanticTokensLegend{
					TokenTypes:     SemanticTokenTypes,
					TokenModifiers: SemanticTokenModifiers,
				},
				Full: ptrBool(true),
			},
		},
	}, nil
}

// loadWorkspace applies root/movec.toml and root/.env on top of the
// current settings. Invalid settings are logged and ignored.
func (h *Handler) loadWorkspace(root string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.root = root
	settings := h.settings
	path := filepath.Join(root, ConfigFile)
	if _, err := os.Stat(path); err == nil {
		if err := config.Load(path, &settings); err != nil {
			log.Errorf("cannot load %s: %s", path, err.Error())
			return
		}
	}
	if err := config.ApplyEnv(&settings, filepath.Join(root, ".env")); err != nil {
		log.Errorf("environment: %s", err.Error())
		return
	}
	if err := settings.Validate(); err != nil {
		log.Errorf("invalid workspace settings: %s", err.Error())
		return
	}
	dialect, err := settings.BuildDialect()
	if err != nil {
		log.Errorf("invalid workspace settings: %s", err.Error())
		return
	}
	h.settings = settings
	h.dialect = dialect
	log.Infof("workspace %s: dialect %s, sender %s, %d module paths", root, dialect.Name(), settings.Sender, len(settings.Modules))
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Info("initialized")
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Info("shutdown")
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (h *Handler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// TextDocumentDidOpen handles file open notifications from the editor
func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	log.Debugf("opened %s", params.TextDocument.URI)
	return h.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

// TextDocumentDidChange handles file change notifications from the editor.
// Only full document sync is advertised, so the last change holds the text.
func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	log.Debugf("changed %s", params.TextDocument.URI)
	if len(params.ContentChanges) == 0 {
		return nil
	}
	var text string
	switch change := params.ContentChanges[len(params.ContentChanges)-1].(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		text = change.Text
	case protocol.TextDocumentContentChangeEvent:
		if change.Range != nil {
			return fmt.Errorf("incremental change for %s is not supported", params.TextDocument.URI)
		}
		text = change.Text
	default:
		return fmt.Errorf("unexpected content change %T", change)
	}
	return h.update(ctx, params.TextDocument.URI, text)
}

// TextDocumentDidClose forgets the document and clears its diagnostics.
func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	log.Debugf("closed %s", params.TextDocument.URI)

	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", params.TextDocument.URI, err)
	}

	h.mu.Lock()
	delete(h.documents, path)
	h.mu.Unlock()

	sendDiagnosticNotification(ctx, params.TextDocument.URI, []protocol.Diagnostic{})
	return nil
}

// TextDocumentSemanticTokensFull handles semantic token requests for the entire document
func (h *Handler) TextDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to convert URI %s: %w", params.TextDocument.URI, err)
	}

	h.mu.Lock()
	text, ok := h.documents[path]
	normalizer := h.normalizer()
	h.mu.Unlock()
	if !ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", path, err)
		}
		text = string(data)
	}
	if normalizer == nil {
		return &protocol.SemanticTokens{Data: []uint32{}}, nil
	}

	normalized, failed := normalizer.NormalizeFile(file.New(path, text))
	if failed != nil {
		log.Debugf("%s: no semantic tokens, normalization failed", path)
		return &protocol.SemanticTokens{Data: []uint32{}}, nil
	}
	return &protocol.SemanticTokens{Data: encodeTokens(collectSemanticTokens(normalized, text))}, nil
}

// normalizer must be called with mu held.
func (h *Handler) normalizer() *normalize.Normalizer {
	sender, err := h.dialect.NormalizeAccountAddress(h.settings.Sender)
	if err != nil {
		return nil
	}
	return &normalize.Normalizer{Dialect: h.dialect, Sender: sender, StdlibDir: h.resolve(h.settings.StdlibDir)}
}

func (h *Handler) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return fmt.Errorf("failed to convert URI %s: %w", uri, err)
	}

	h.mu.Lock()
	h.documents[path] = text
	h.mu.Unlock()

	for target, diagnostics := range h.diagnose(path) {
		if target == path {
			sendDiagnosticNotification(ctx, uri, diagnostics)
		} else {
			sendDiagnosticNotification(ctx, pathToURI(target), diagnostics)
		}
	}
	return nil
}

// diagnose checks the open document at path against the workspace modules.
// The result always has an entry for path, and for every open dependency,
// so stale diagnostics are cleared. Errors in closed files are reported on
// path itself.
func (h *Handler) diagnose(path string) map[string][]protocol.Diagnostic {
	h.mu.Lock()
	documents := make(map[string]string, len(h.documents))
	for p, text := range h.documents {
		documents[p] = text
	}
	settings := h.settings
	dialect := h.dialect
	stdlib := h.resolve(settings.StdlibDir)
	modules := make([]string, len(settings.Modules))
	for i, m := range settings.Modules {
		modules[i] = h.resolve(m)
	}
	h.mu.Unlock()

	target := file.New(path, documents[path])
	deps := h.dependencies(modules, documents, path)

	sources := map[string]string{path: target.Content}
	for _, dep := range deps {
		sources[dep.Path] = dep.Content
	}

	list, err := h.check(dialect, settings.Sender, target, deps,
		compiler.WithStdlibDir(stdlib),
		compiler.WithParallelism(settings.Parallelism),
		compiler.WithCache(h.cache))

	result := map[string][]protocol.Diagnostic{path: {}}
	for _, dep := range deps {
		if _, open := documents[filepath.Clean(dep.Path)]; open {
			result[dep.Path] = []protocol.Diagnostic{}
		}
	}
	if err != nil {
		log.Errorf("%s: %s", path, err.Error())
		result[path] = []protocol.Diagnostic{{
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString(diagnosticSource),
			Message:  err.Error(),
		}}
		return result
	}

	byFile := Diagnostics(list, sources)
	files := make([]string, 0, len(byFile))
	for p := range byFile {
		files = append(files, p)
	}
	sort.Strings(files)
	for _, p := range files {
		if _, open := documents[filepath.Clean(p)]; open || p == path {
			result[p] = append(result[p], byFile[p]...)
			continue
		}
		for _, d := range byFile[p] {
			if d.Severity != nil && *d.Severity == protocol.DiagnosticSeverityError {
				result[path] = append(result[path], forwardDiagnostic(p, d))
			}
		}
	}
	log.Debugf("%s: %d diagnostics", path, len(list))
	return result
}

// check runs the checker policy and returns either its errors or, on
// success, its warnings. A plain error means the run could not start.
func (h *Handler) check(dialect dialects.Dialect, sender string, target file.File, deps []file.File, opts ...compiler.Option) (cerrors.List, error) {
	c, err := compiler.New(h.toolchain, dialect, sender, opts...)
	if err != nil {
		return nil, err
	}
	outcome, err := compiler.Run[compiler.Outcome](c, []file.File{target}, deps, compiler.Checker{})
	if err != nil {
		var list cerrors.List
		if errors.As(err, &list) {
			return list, nil
		}
		return nil, err
	}
	return outcome.Meta.Warnings, nil
}

// dependencies loads the workspace modules, replacing files that are open
// with their editor text and leaving out the target itself.
func (h *Handler) dependencies(modules []string, documents map[string]string, target string) []file.File {
	files, err := file.LoadAll(modules)
	if err != nil {
		log.Warningf("cannot load modules: %s", err.Error())
		return nil
	}
	deps := make([]file.File, 0, len(files))
	for _, f := range files {
		path := filepath.Clean(f.Path)
		if path == target {
			continue
		}
		if text, open := documents[path]; open {
			f = f.WithContent(text)
		}
		deps = append(deps, f)
	}
	return deps
}

// resolve makes a configured path absolute against the workspace root.
func (h *Handler) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || h.root == "" {
		return path
	}
	return filepath.Join(h.root, path)
}

// Convert URI to platform-local file path
func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}

	path := u.Path

	// On Windows, remove leading slash (e.g., /C:/...) -> C:/...
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}

	return filepath.Clean(filepath.FromSlash(path)), nil
}

func pathToURI(path string) protocol.DocumentUri {
	slashed := filepath.ToSlash(path)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	return (&url.URL{Scheme: "file", Path: slashed}).String()
}

func sendDiagnosticNotification(ctx *glsp.Context, uri protocol.DocumentUri, diagnostics []protocol.Diagnostic) {
	if ctx == nil || ctx.Notify == nil {
		return
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

func ptrBool(b bool) *bool {
	return &b
}

func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}

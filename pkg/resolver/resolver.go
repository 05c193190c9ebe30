// Package resolver maps import specifiers to files in a source set.
package resolver

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/panbanda/tangle/pkg/source"
)

// DefaultExtensions are probed, in order, when a specifier has no extension.
var DefaultExtensions = []string{".ts", ".tsx", ".d.ts", ".js", ".jsx", ".mjs", ".cjs"}

// DefaultCacheSize is the default number of memoised resolutions.
const DefaultCacheSize = 4096

// Resolver turns an import specifier into a file path in files.
type Resolver interface {
	// Resolve returns the path specifier refers to when imported from
	// fromFile. ok is false when no file in files matches.
	Resolve(fromFile, specifier string, files *source.Set) (path string, ok bool)
	// IsLocal reports whether specifier refers to project files rather than
	// an external package.
	IsLocal(specifier string) bool
}

// IsLocalSpecifier reports whether specifier is relative, absolute or starts
// with one of aliasPrefixes.
func IsLocalSpecifier(specifier string, aliasPrefixes []string) bool {
	if strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/") {
		return true
	}
	for _, p := range aliasPrefixes {
		if p != "" && strings.HasPrefix(specifier, p) {
			return true
		}
	}
	return false
}

type alias struct {
	prefix string
	target string
}

type memoKey struct {
	dir       string
	specifier string
}

type memoResult struct {
	path string
	ok   bool
}

// ModuleResolver resolves relative, absolute and aliased specifiers with
// extension and index probing. It is safe for concurrent use.
type ModuleResolver struct {
	aliases    []alias
	prefixes   []string
	extensions []string

	mu   sync.Mutex
	memo *lru.Cache[memoKey, memoResult]
}

// Option configures a ModuleResolver.
type Option func(*ModuleResolver)

// WithAliases maps specifier prefixes to directories, for example
// "@/" -> "src/". The longest matching prefix wins.
func WithAliases(aliases map[string]string) Option {
	return func(r *ModuleResolver) {
		r.aliases = r.aliases[:0]
		for prefix, target := range aliases {
			r.aliases = append(r.aliases, alias{prefix: prefix, target: target})
		}
		sort.Slice(r.aliases, func(i, j int) bool {
			if len(r.aliases[i].prefix) != len(r.aliases[j].prefix) {
				return len(r.aliases[i].prefix) > len(r.aliases[j].prefix)
			}
			return r.aliases[i].prefix < r.aliases[j].prefix
		})
		r.prefixes = make([]string, len(r.aliases))
		for i, a := range r.aliases {
			r.prefixes[i] = a.prefix
		}
	}
}

// WithExtensions replaces the probed extensions.
func WithExtensions(exts []string) Option {
	return func(r *ModuleResolver) {
		if len(exts) > 0 {
			r.extensions = append([]string(nil), exts...)
		}
	}
}

// WithCacheSize sets the memo capacity.
func WithCacheSize(n int) Option {
	return func(r *ModuleResolver) {
		if n > 0 {
			r.memo, _ = lru.New[memoKey, memoResult](n)
		}
	}
}

// New creates a ModuleResolver.
func New(opts ...Option) *ModuleResolver {
	r := &ModuleResolver{
		extensions: append([]string(nil), DefaultExtensions...),
	}
	r.memo, _ = lru.New[memoKey, memoResult](DefaultCacheSize)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsLocal implements Resolver.
func (r *ModuleResolver) IsLocal(specifier string) bool {
	return IsLocalSpecifier(specifier, r.prefixes)
}

// Resolve implements Resolver.
func (r *ModuleResolver) Resolve(fromFile, specifier string, files *source.Set) (string, bool) {
	if specifier == "" || files == nil || !r.IsLocal(specifier) {
		return "", false
	}

	key := memoKey{dir: filepath.Dir(fromFile), specifier: specifier}
	r.mu.Lock()
	cached, hit := r.memo.Get(key)
	r.mu.Unlock()
	if hit && (!cached.ok || files.Has(cached.path)) {
		return cached.path, cached.ok
	}

	path, ok := r.probe(r.base(key.dir, specifier), files)

	r.mu.Lock()
	r.memo.Add(key, memoResult{path: path, ok: ok})
	r.mu.Unlock()
	return path, ok
}

// Reset purges the memo. Call it whenever the file set changes.
func (r *ModuleResolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memo.Purge()
}

// base returns the path the specifier points at before probing.
func (r *ModuleResolver) base(dir, specifier string) string {
	switch {
	case strings.HasPrefix(specifier, "."):
		return filepath.Join(dir, specifier)
	case strings.HasPrefix(specifier, "/"):
		return filepath.Clean(specifier)
	}
	for _, a := range r.aliases {
		if strings.HasPrefix(specifier, a.prefix) {
			return filepath.Join(a.target, strings.TrimPrefix(specifier, a.prefix))
		}
	}
	return filepath.Clean(specifier)
}

// probe finds the first candidate for base that exists in files.
func (r *ModuleResolver) probe(base string, files *source.Set) (string, bool) {
	for _, c := range r.candidates(base) {
		if files.Has(c) {
			return c, true
		}
	}
	return "", false
}

func (r *ModuleResolver) candidates(base string) []string {
	out := []string{base}

	// ESM-style TypeScript imports name the emitted .js file.
	switch filepath.Ext(base) {
	case ".js", ".jsx":
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		out = append(out, stem+".ts", stem+".tsx")
	case ".mjs":
		out = append(out, strings.TrimSuffix(base, ".mjs")+".mts")
	case ".cjs":
		out = append(out, strings.TrimSuffix(base, ".cjs")+".cts")
	}

	for _, ext := range r.extensions {
		out = append(out, base+ext)
	}
	for _, ext := range r.extensions {
		out = append(out, filepath.Join(base, "index"+ext))
	}
	return out
}

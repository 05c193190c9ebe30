package deadcode

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/panbanda/tangle/pkg/models"
)

// Classifier sorts declarations into dead-code categories. A Classifier is
// immutable after New and safe for concurrent use.
type Classifier struct {
	ignoreFiles        []glob.Glob
	ignoreNames        []glob.Glob
	skipUnderscoreArgs bool
	categories         map[models.DeadCodeCategory]bool
}

type options struct {
	ignoreFiles        []string
	ignoreNames        []string
	skipUnderscoreArgs bool
	categories         []models.DeadCodeCategory
}

// Option is a functional option for configuring a Classifier.
type Option func(*options)

// WithIgnoreFiles suppresses findings in files matching any glob pattern.
// Their imports still count as references.
func WithIgnoreFiles(patterns ...string) Option {
	return func(o *options) {
		o.ignoreFiles = append(o.ignoreFiles, patterns...)
	}
}

// WithIgnoreNames suppresses findings whose symbol matches any glob pattern.
func WithIgnoreNames(patterns ...string) Option {
	return func(o *options) {
		o.ignoreNames = append(o.ignoreNames, patterns...)
	}
}

// WithUnderscoreArgs exempts arguments named with a leading underscore.
// Every argument is checked unless this is enabled.
func WithUnderscoreArgs(skip bool) Option {
	return func(o *options) {
		o.skipUnderscoreArgs = skip
	}
}

// WithCategories restricts classification to the given categories.
func WithCategories(categories ...models.DeadCodeCategory) Option {
	return func(o *options) {
		o.categories = append(o.categories, categories...)
	}
}

// New creates a Classifier. It fails only on malformed glob patterns.
func New(opts ...Option) (*Classifier, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	c := &Classifier{skipUnderscoreArgs: o.skipUnderscoreArgs}
	var err error
	if c.ignoreFiles, err = compileGlobs(o.ignoreFiles); err != nil {
		return nil, err
	}
	if c.ignoreNames, err = compileGlobs(o.ignoreNames); err != nil {
		return nil, err
	}
	if len(o.categories) > 0 {
		c.categories = make(map[models.DeadCodeCategory]bool, len(o.categories))
		for _, cat := range o.categories {
			c.categories[cat] = true
		}
	}
	return c, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func matchAny(globs []glob.Glob, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}

func (c *Classifier) wants(cat models.DeadCodeCategory) bool {
	return c.categories == nil || c.categories[cat]
}

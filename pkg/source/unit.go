package source

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/panbanda/tangle/pkg/parser"
)

// Unit is one parsed file. A Unit is immutable once created: a changed file
// produces a new Unit with a new Hash.
type Unit struct {
	// Path is the stable identifier of the file.
	Path string
	// Content is the raw file text.
	Content []byte
	// Hash is the hex BLAKE3 digest of Content.
	Hash string
	// Result is the parse result, or nil when the file could not be parsed.
	Result *parser.ParseResult
	// ParseErr records why Result is nil, if it is.
	ParseErr error
	// Dependencies optionally lists already-resolved local dependency paths.
	// When non-nil it takes precedence over resolving import specifiers.
	Dependencies []string
}

// NewUnit creates a Unit from already-parsed content.
func NewUnit(path string, content []byte, result *parser.ParseResult) *Unit {
	return &Unit{
		Path:    path,
		Content: content,
		Hash:    HashBytes(content),
		Result:  result,
	}
}

// Parse parses content with psr and returns a Unit. Parse failures are
// recorded on the Unit rather than returned.
func Parse(psr *parser.Parser, path string, content []byte) *Unit {
	u := NewUnit(path, content, nil)

	lang := parser.DetectLanguage(path)
	if lang == parser.LangUnknown {
		u.ParseErr = fmt.Errorf("unsupported language for file: %s", path)
		return u
	}

	result, err := psr.Parse(content, lang, path)
	if err != nil {
		u.ParseErr = err
		return u
	}
	u.Result = result
	return u
}

// ErrTooLarge is returned by Load for content above the size limit.
var ErrTooLarge = errors.New("file exceeds size limit")

// Load reads path from src and parses it. Read errors and content over
// maxSize bytes (0 means no limit) are returned; a parse error yields a Unit
// without a tree.
func Load(psr *parser.Parser, src ContentSource, path string, maxSize int64) (*Unit, error) {
	content, err := src.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if maxSize > 0 && int64(len(content)) > maxSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(content))
	}
	return Parse(psr, path, content), nil
}

// Parsed reports whether the unit has a syntax tree.
func (u *Unit) Parsed() bool {
	return u != nil && u.Result != nil && u.Result.Tree != nil
}

// Close releases the unit's tree.
func (u *Unit) Close() {
	if u.Parsed() {
		u.Result.Tree.Close()
	}
}

// HashBytes computes a BLAKE3 hash of data and returns it as a hex string.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

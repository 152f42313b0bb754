package component

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"wick-go/packages/compiler/src/config"
	"wick-go/packages/compiler/src/util"
)

// Version is mixed into every cache key so entries written by another
// compiler version are never reused.
const Version = "0.3.0"

// Fingerprint identifies the compiler settings that change generated code.
func Fingerprint(cfg *config.CompilerConfig) string {
	globals := append([]string(nil), cfg.Globals...)
	sort.Strings(globals)
	return fmt.Sprintf("wick/%s|%s|v=%t|sm=%t|ws=%t|p=%s",
		Version, strings.Join(globals, ","), cfg.Verify, cfg.SourceMaps, cfg.PreserveWhitespaces, cfg.ClassPrefix)
}

// SourceHash hashes a component source together with the compiler
// fingerprint.
func SourceHash(source, fingerprint string) uint64 {
	h := xxh3.New()
	h.WriteString(fingerprint)
	h.WriteString("\x00")
	h.WriteString(source)
	return h.Sum64()
}

// ClassName derives the generated class name from the component file name
// and its source hash, e.g. `TodoItem_3fa9c01e`.
func ClassName(prefix, path string, hash uint64) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s%s_%08x", prefix, util.PascalCase(base), uint32(hash))
}

// HashString renders a hash the way the CLI and the reload channel print it.
func HashString(hash uint64) string {
	return fmt.Sprintf("%016x", hash)
}

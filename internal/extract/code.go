package extract

import (
	"context"
	"os"
	"regexp"
	"strings"

	"github.com/hippo-mem/hippo/internal/chunk"
	"github.com/hippo-mem/hippo/internal/memory"
)

// CodeExtractor computes line count, imports, exports, and a top-level
// function table for source files. It reuses a tree-sitter parser and
// symbol extractor for the languages that have a grammar
// wired (go, python, javascript, typescript, tsx); every other recognized
// language — and any tree-sitter parse failure — falls back to a
// per-language-group line scan. Imports and exports always come from the
// line scan: a full parse buys little for statements that are this
// regular across a file.
type CodeExtractor struct {
	parser    *chunk.Parser
	extractor *chunk.SymbolExtractor
}

// NewCodeExtractor builds a CodeExtractor.
func NewCodeExtractor() *CodeExtractor {
	registry := chunk.DefaultRegistry()
	return &CodeExtractor{
		parser:    chunk.NewParserWithRegistry(registry),
		extractor: chunk.NewSymbolExtractorWithRegistry(registry),
	}
}

// Extract reads path's source and builds its CodeInfo.
func (e *CodeExtractor) Extract(ctx context.Context, path string, _ memory.Kind) (memory.Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return memory.Metadata{}, nil
	}

	lang := languageForExt(extOf(path))
	info := &memory.CodeInfo{
		Lines:   countLines(content),
		Imports: scanImports(content, lang.group),
		Exports: scanExports(content, lang.group),
	}
	info.Dependencies = externalDependencies(info.Imports)

	if lang.treeSitter {
		if fns, ok := e.treeSitterFunctions(ctx, content, lang.name); ok {
			info.Functions = fns
			return memory.Metadata{Code: info}, nil
		}
	}
	info.Functions = scanFunctions(content, lang.group)

	return memory.Metadata{Code: info}, nil
}

func (e *CodeExtractor) treeSitterFunctions(ctx context.Context, content []byte, language string) ([]memory.CodeFunction, bool) {
	tree, err := e.parser.Parse(ctx, content, language)
	if err != nil {
		return nil, false
	}
	symbols := e.extractor.Extract(tree, content)

	fns := make([]memory.CodeFunction, 0, len(symbols))
	for _, s := range symbols {
		if s.Type != chunk.SymbolTypeFunction && s.Type != chunk.SymbolTypeMethod {
			continue
		}
		fns = append(fns, memory.CodeFunction{
			Name:       s.Name,
			LineStart:  s.StartLine,
			LineEnd:    s.EndLine,
			IsPublic:   isPublicName(s.Name),
			DocComment: s.DocComment,
		})
	}
	return fns, true
}

func extOf(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return path[i+1:]
}

// countLines returns the number of non-blank lines in content.
func countLines(content []byte) int {
	n := 0
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// isPublicName applies Go's exported-identifier convention (leading
// uppercase) as a reasonable cross-language default for "public" symbols;
// most of the glossary's languages use the same convention or a keyword
// the line scan already filters on (e.g. Python's leading underscore for
// "private").
func isPublicName(name string) bool {
	if name == "" {
		return false
	}
	return strings.ToUpper(name[:1]) == name[:1] && !strings.HasPrefix(name, "_")
}

var (
	goImportRe     = regexp.MustCompile(`^\s*"([^"]+)"\s*$`)
	goImportLineRe = regexp.MustCompile(`^\s*import\s+"([^"]+)"`)
	goFuncRe       = regexp.MustCompile(`^\s*func\s+(?:\([^)]*\)\s*)?([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

	pyImportRe = regexp.MustCompile(`^\s*(?:import\s+([A-Za-z0-9_.]+)|from\s+([A-Za-z0-9_.]+)\s+import)`)
	pyFuncRe   = regexp.MustCompile(`^\s*def\s+([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

	jsImportRe = regexp.MustCompile(`^\s*import\s+.*?from\s+['"]([^'"]+)['"]|^\s*(?:const|let|var)\s+.*?=\s*require\(['"]([^'"]+)['"]\)`)
	jsExportRe = regexp.MustCompile(`^\s*export\s+(?:default\s+)?(?:async\s+)?(?:function|class|const|let|var)\s+([A-Za-z_$][A-Za-z0-9_$]*)`)
	jsFuncRe   = regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s+([A-Za-z_$][A-Za-z0-9_$]*)\s*\(`)

	cIncludeRe = regexp.MustCompile(`^\s*#include\s*[<"]([^">]+)[">]`)
	cFuncRe    = regexp.MustCompile(`^\s*(?:[A-Za-z_][A-Za-z0-9_<>:*&\s]*\s+)?([A-Za-z_~][A-Za-z0-9_]*)\s*\([^;{]*\)\s*\{`)

	rubyRequireRe = regexp.MustCompile(`^\s*require(?:_relative)?\s+['"]([^'"]+)['"]`)
	rubyDefRe     = regexp.MustCompile(`^\s*def\s+([A-Za-z_][A-Za-z0-9_?!=]*)`)
)

// scanImports runs the per-group import pattern over content, one match
// per line, returning the captured module/path names in file order.
func scanImports(content []byte, group languageGroup) []string {
	var imports []string
	for _, line := range strings.Split(string(content), "\n") {
		switch group {
		case groupGo:
			if m := goImportLineRe.FindStringSubmatch(line); m != nil {
				imports = append(imports, m[1])
			} else if m := goImportRe.FindStringSubmatch(line); m != nil {
				imports = append(imports, m[1])
			}
		case groupPython:
			if m := pyImportRe.FindStringSubmatch(line); m != nil {
				if m[1] != "" {
					imports = append(imports, m[1])
				} else {
					imports = append(imports, m[2])
				}
			}
		case groupJSLike:
			if m := jsImportRe.FindStringSubmatch(line); m != nil {
				if m[1] != "" {
					imports = append(imports, m[1])
				} else {
					imports = append(imports, m[2])
				}
			}
		case groupCLike:
			if m := cIncludeRe.FindStringSubmatch(line); m != nil {
				imports = append(imports, m[1])
			}
		case groupRubyLike:
			if m := rubyRequireRe.FindStringSubmatch(line); m != nil {
				imports = append(imports, m[1])
			}
		}
	}
	return dedup(imports)
}

// scanExports finds exported symbol names. Only languages with an
// explicit export keyword (JS/TS) have anything to report here; Go's
// capitalization-based exports are represented per-function via
// CodeFunction.IsPublic instead.
func scanExports(content []byte, group languageGroup) []string {
	if group != groupJSLike {
		return nil
	}
	var exports []string
	for _, line := range strings.Split(string(content), "\n") {
		if m := jsExportRe.FindStringSubmatch(line); m != nil {
			exports = append(exports, m[1])
		}
	}
	return dedup(exports)
}

// scanFunctions is the line-based fallback used for languages without a
// tree-sitter grammar wired. It finds a function's declaration line only;
// LineEnd equals LineStart since brace/indent matching to find the real
// end is exactly the "not a full parser" tradeoff the line scan accepts.
func scanFunctions(content []byte, group languageGroup) []memory.CodeFunction {
	var fns []memory.CodeFunction
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		var name string
		switch group {
		case groupGo:
			if m := goFuncRe.FindStringSubmatch(line); m != nil {
				name = m[1]
			}
		case groupPython:
			if m := pyFuncRe.FindStringSubmatch(line); m != nil {
				name = m[1]
			}
		case groupJSLike:
			if m := jsFuncRe.FindStringSubmatch(line); m != nil {
				name = m[1]
			}
		case groupCLike:
			if m := cFuncRe.FindStringSubmatch(line); m != nil {
				name = m[1]
			}
		case groupRubyLike:
			if m := rubyDefRe.FindStringSubmatch(line); m != nil {
				name = m[1]
			}
		}
		if name == "" {
			continue
		}
		fns = append(fns, memory.CodeFunction{
			Name:      name,
			LineStart: i + 1,
			LineEnd:   i + 1,
			IsPublic:  isPublicName(name),
		})
	}
	return fns
}

// externalDependencies filters imports down to ones that look like
// external package references rather than relative/local imports.
func externalDependencies(imports []string) []string {
	var deps []string
	for _, imp := range imports {
		if strings.HasPrefix(imp, ".") || strings.HasPrefix(imp, "/") {
			continue
		}
		deps = append(deps, imp)
	}
	return dedup(deps)
}

func dedup(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	return out
}

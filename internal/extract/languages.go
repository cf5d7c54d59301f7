package extract

import "strings"

// languageGroup selects which line-scan pattern table CodeExtractor uses
// for a language. Grouping by syntax family, rather than one table per
// language, keeps the pattern table small while still covering every
// recognized code extension.
type languageGroup string

const (
	groupGo       languageGroup = "go"
	groupPython   languageGroup = "python"
	groupJSLike   languageGroup = "js"
	groupCLike    languageGroup = "c"
	groupRubyLike languageGroup = "ruby"
	groupSQL      languageGroup = "sql"
	groupMarkup   languageGroup = "markup"
	groupData     languageGroup = "data"
)

// languageInfo describes one recognized code language: its canonical
// name, the group whose patterns apply, and whether go-tree-sitter has a
// grammar wired for it.
type languageInfo struct {
	name        string
	group       languageGroup
	treeSitter  bool
}

// languagesByExt maps a lowercase, dot-less extension to its languageInfo.
// Extensions with a tree-sitter grammar (go, python, javascript,
// typescript, tsx) use it to build the function table; everything else
// uses the regex scanners. Line counts are computed the same way for all.
var languagesByExt = map[string]languageInfo{
	"rs":    {name: "rust", group: groupCLike},
	"py":    {name: "python", group: groupPython, treeSitter: true},
	"js":    {name: "javascript", group: groupJSLike, treeSitter: true},
	"ts":    {name: "typescript", group: groupJSLike, treeSitter: true},
	"jsx":   {name: "javascript", group: groupJSLike, treeSitter: true},
	"tsx":   {name: "tsx", group: groupJSLike, treeSitter: true},
	"go":    {name: "go", group: groupGo, treeSitter: true},
	"java":  {name: "java", group: groupCLike},
	"c":     {name: "c", group: groupCLike},
	"cpp":   {name: "cpp", group: groupCLike},
	"h":     {name: "c", group: groupCLike},
	"hpp":   {name: "cpp", group: groupCLike},
	"rb":    {name: "ruby", group: groupRubyLike},
	"php":   {name: "php", group: groupCLike},
	"swift": {name: "swift", group: groupCLike},
	"kt":    {name: "kotlin", group: groupCLike},
	"scala": {name: "scala", group: groupCLike},
	"sh":    {name: "shell", group: groupRubyLike},
	"bash":  {name: "shell", group: groupRubyLike},
	"zsh":   {name: "shell", group: groupRubyLike},
	"sql":   {name: "sql", group: groupSQL},
	"html":  {name: "html", group: groupMarkup},
	"css":   {name: "css", group: groupMarkup},
	"json":  {name: "json", group: groupData},
	"yaml":  {name: "yaml", group: groupData},
	"yml":   {name: "yaml", group: groupData},
	"toml":  {name: "toml", group: groupData},
	"xml":   {name: "xml", group: groupMarkup},
}

// languageForExt looks up the languageInfo for a lowercase, dot-less
// extension, defaulting to an unnamed c-like group for anything outside
// the table (best-effort rather than a failure).
func languageForExt(ext string) languageInfo {
	if info, ok := languagesByExt[strings.ToLower(ext)]; ok {
		return info
	}
	return languageInfo{name: "", group: groupCLike}
}

// LanguageName returns the canonical language name for a lowercase,
// dot-less extension (e.g. "py" -> "python"), or "" if unrecognized. The
// pipeline uses this to populate Kind.Code.Language without duplicating
// languagesByExt.
func LanguageName(ext string) string {
	return languageForExt(ext).name
}

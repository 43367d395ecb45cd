package bundler

import (
	"cmp"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	staticImportRE  = regexp.MustCompile(`(?m)^\s*import\s+(?:[\w*{}\s,$]+?\s+from\s+)?['"]([^'"\n]+)['"]`)
	exportFromRE    = regexp.MustCompile(`(?m)^\s*export\s+[\w*{}\s,$]+?\s+from\s+['"]([^'"\n]+)['"]`)
	requireRE       = regexp.MustCompile(`\brequire\(\s*['"]([^'"\n]+)['"]\s*\)`)
	dynamicImportRE = regexp.MustCompile(`\bimport\(\s*['"]([^'"\n]+)['"]\s*\)`)
	lineCommentRE   = regexp.MustCompile(`(?m)^\s*//.*$`)
	blockCommentRE  = regexp.MustCompile(`(?s)/\*.*?\*/`)

	scriptBlockRE = regexp.MustCompile(`(?s)<script\b[^>]*>(.*?)</script>`)
	styleBlockRE  = regexp.MustCompile(`(?s)<style\b([^>]*)>(.*?)</style>`)
	langAttrRE    = regexp.MustCompile(`\blang\s*=\s*["']?([\w-]+)`)
	moduleAttrRE  = regexp.MustCompile(`\bmodule\b`)
)

// scanImports returns the import specifiers of a script in source order.
func scanImports(code string) []string {
	code = stripComments(code)

	type hit struct {
		pos  int
		spec string
	}
	var hits []hit
	for _, re := range []*regexp.Regexp{staticImportRE, exportFromRE, requireRE, dynamicImportRE} {
		for _, m := range re.FindAllStringSubmatchIndex(code, -1) {
			hits = append(hits, hit{pos: m[2], spec: code[m[2]:m[3]]})
		}
	}

	slices.SortStableFunc(hits, func(a, b hit) int {
		return cmp.Compare(a.pos, b.pos)
	})

	seen := make(map[string]bool, len(hits))
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		if seen[h.spec] {
			continue
		}
		seen[h.spec] = true
		out = append(out, h.spec)
	}
	return out
}

func stripComments(code string) string {
	code = blockCommentRE.ReplaceAllString(code, "")
	return lineCommentRE.ReplaceAllString(code, "")
}

// styleBlock is one <style> block of a single file component.
type styleBlock struct {
	ID      string
	Content string
}

// splitComponent extracts the script text and the style blocks of a single file component.
// Each style block gets a virtual id carrying its index and language.
func splitComponent(file, source string) (string, []styleBlock) {
	var script strings.Builder
	for _, m := range scriptBlockRE.FindAllStringSubmatch(source, -1) {
		script.WriteString(m[1])
		script.WriteString("\n")
	}

	matches := styleBlockRE.FindAllStringSubmatch(source, -1)
	blocks := make([]styleBlock, 0, len(matches))
	for i, m := range matches {
		attrs := m[1]
		lang := "css"
		if l := langAttrRE.FindStringSubmatch(attrs); l != nil {
			lang = l[1]
		}
		suffix := "lang." + lang
		if moduleAttrRE.MatchString(attrs) {
			suffix = "lang.module." + lang
		}
		blocks = append(blocks, styleBlock{
			ID:      file + "?vue&type=style&index=" + strconv.Itoa(i) + "&" + suffix,
			Content: m[2],
		})
	}
	return script.String(), blocks
}

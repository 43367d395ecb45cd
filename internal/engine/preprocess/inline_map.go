package preprocess

import (
	"encoding/base64"
	"regexp"
	"strings"

	"go.trai.ch/sheen/internal/core/sourcemap"
)

var inlineMapRE = regexp.MustCompile(`(?m)\n?/\*# sourceMappingURL=data:application/json;(?:charset=utf-8;)?base64,([A-Za-z0-9+/=]+)\s*\*/\s*$`)

// ExtractInlineSourceMap removes a trailing inline source map comment from code
// and returns the decoded map, or nil when there is none or it cannot be read.
func ExtractInlineSourceMap(code string) (string, *sourcemap.Map) {
	loc := inlineMapRE.FindStringSubmatchIndex(code)
	if loc == nil {
		return code, nil
	}
	stripped := strings.TrimRight(code[:loc[0]], "\n") + "\n"
	data, err := base64.StdEncoding.DecodeString(code[loc[2]:loc[3]])
	if err != nil {
		return stripped, nil
	}
	m, err := sourcemap.Parse(data)
	if err != nil {
		return stripped, nil
	}
	return stripped, m
}

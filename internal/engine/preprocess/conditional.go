package preprocess

import (
	"regexp"
	"strings"
)

var directiveRE = regexp.MustCompile(`^\s*(?:/\*|//)\s*#(ifdef|ifndef|endif)\b\s*(.*?)\s*(?:\*/)?\s*$`)

// ExpandConditionals evaluates #ifdef, #ifndef and #endif directives written inside comments.
// Lines of inactive regions and the directive lines themselves are blanked so
// that line numbers are preserved.
func ExpandConditionals(source string, isDefined func(string) bool) string {
	if !strings.Contains(source, "#endif") {
		return source
	}

	lines := strings.Split(source, "\n")
	var stack []bool
	active := func() bool {
		for _, keep := range stack {
			if !keep {
				return false
			}
		}
		return true
	}

	for i, line := range lines {
		m := directiveRE.FindStringSubmatch(line)
		if m == nil {
			if !active() {
				lines[i] = ""
			}
			continue
		}
		switch m[1] {
		case "ifdef":
			stack = append(stack, evalCondition(m[2], isDefined))
		case "ifndef":
			stack = append(stack, !evalCondition(m[2], isDefined))
		case "endif":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
		lines[i] = ""
	}
	return strings.Join(lines, "\n")
}

// evalCondition evaluates names joined by || and &&, where && binds tighter.
func evalCondition(cond string, isDefined func(string) bool) bool {
	for alt := range strings.SplitSeq(cond, "||") {
		all := true
		for name := range strings.SplitSeq(alt, "&&") {
			name = strings.TrimSpace(name)
			if name == "" || !isDefined(name) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

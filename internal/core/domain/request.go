package domain

import (
	"path"
	"regexp"
	"strings"
)

var (
	cssLangRE       = regexp.MustCompile(`\.(css|less|sass|scss|styl|stylus|pcss|postcss)($|\?)`)
	cssModuleRE     = regexp.MustCompile(`\.module\.(css|less|sass|scss|styl|stylus|pcss|postcss)($|\?)`)
	directRequestRE = regexp.MustCompile(`(\?|&)direct\b`)
	commonjsProxyRE = regexp.MustCompile(`\?commonjs-proxy`)
	queryRE         = regexp.MustCompile(`[?#].*$`)
)

// IsStyleRequest reports whether the module id names a style unit handled by the pipeline.
func IsStyleRequest(id string) bool {
	return cssLangRE.MatchString(id) && !directRequestRE.MatchString(id)
}

// IsDirectStyleRequest reports whether the id asks for the raw stylesheet rather than a module wrapper.
func IsDirectStyleRequest(id string) bool {
	return cssLangRE.MatchString(id) && directRequestRE.MatchString(id)
}

// IsScopedModuleRequest reports whether the id is a CSS Modules unit.
// Scoping is never applied when modules are disabled in the configuration.
func IsScopedModuleRequest(id string, modules *ModulesOptions) bool {
	if modules != nil && modules.Disabled {
		return false
	}
	return IsStyleRequest(id) && cssModuleRE.MatchString(id)
}

// IsCommonJSProxy reports whether the id is a bundler-generated commonjs proxy.
func IsCommonJSProxy(id string) bool {
	return commonjsProxyRE.MatchString(id)
}

// DialectOf returns the dialect tag carried by the id, or DialectNone.
func DialectOf(id string) Dialect {
	m := cssLangRE.FindStringSubmatch(id)
	if m == nil {
		return DialectNone
	}
	return Dialect(m[1])
}

// CleanURL strips the query and hash from a module id.
func CleanURL(id string) string {
	return queryRE.ReplaceAllString(id, "")
}

// SplitPostfix splits a url into its path and its query or hash suffix.
func SplitPostfix(url string) (string, string) {
	i := strings.IndexAny(url, "?#")
	if i < 0 {
		return url, ""
	}
	return url[:i], url[i:]
}

// IsExternalURL reports whether the url points outside of the project.
func IsExternalURL(url string) bool {
	return strings.HasPrefix(url, "//") ||
		strings.HasPrefix(url, "http://") ||
		strings.HasPrefix(url, "https://")
}

// IsDataURL reports whether the url is an inline data url.
func IsDataURL(url string) bool {
	return strings.HasPrefix(strings.TrimSpace(url), "data:")
}

// ModuleName returns the base name of the module file without its extension.
func ModuleName(id string) string {
	base := path.Base(CleanURL(id))
	if i := strings.Index(base, "."); i > 0 {
		return base[:i]
	}
	return base
}

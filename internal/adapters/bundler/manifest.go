package bundler

import (
	"encoding/json"
	"os"
	"path"
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

type pagesFile struct {
	Pages       []pageEntry  `json:"pages"`
	SubPackages []subPackage `json:"subPackages"`
}

type pageEntry struct {
	Path string `json:"path"`
}

type subPackage struct {
	Root  string      `json:"root"`
	Pages []pageEntry `json:"pages"`
}

// readManifest returns the root-relative page paths declared by the route manifest.
func readManifest(file string) ([]string, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read route manifest"), "file", file)
	}

	var pf pagesFile
	if err := json.Unmarshal([]byte(stripComments(string(data))), &pf); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to parse route manifest"), "file", file)
	}

	var pages []string
	for _, p := range pf.Pages {
		pages = append(pages, path.Clean(p.Path))
	}
	for _, sub := range pf.SubPackages {
		for _, p := range sub.Pages {
			pages = append(pages, path.Join(sub.Root, p.Path))
		}
	}
	return pages, nil
}

// manifestModule renders the generated module importing every page.
func manifestModule(pages []string) string {
	var b strings.Builder
	for _, p := range pages {
		b.WriteString("import ")
		b.WriteString(strconv.Quote("@/" + p))
		b.WriteString(";\n")
	}
	quoted := make([]string, len(pages))
	for i, p := range pages {
		quoted[i] = strconv.Quote(p)
	}
	b.WriteString("export default [")
	b.WriteString(strings.Join(quoted, ", "))
	b.WriteString("];\n")
	return b.String()
}

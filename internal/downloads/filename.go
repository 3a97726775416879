package downloads

import (
	"net/url"
	"path/filepath"
	"strings"
)

const fallbackName = "download.bin"

// outputName picks the file name for an item: the explicit title, else the
// last path segment of the mirror URL, else fallbackName. The result never
// contains a directory part.
func outputName(title, mirror string) string {
	if name := cleanName(title); name != "" {
		return name
	}

	if parsed, err := url.Parse(mirror); err == nil && parsed.Path != "" {
		segment := parsed.Path[strings.LastIndex(parsed.Path, "/")+1:]
		if name := cleanName(segment); name != "" {
			return name
		}
	}

	return fallbackName
}

func cleanName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	switch name {
	case ".", "..", "/":
		return ""
	}

	return name
}

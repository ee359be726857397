// Package docs embeds the user documentation topics served by "tm topic".
package docs

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"embed"
)

//go:embed *.md
var topics embed.FS

// Topic returns the markdown content of one topic. The pseudo topic "*"
// expands to all topics concatenated.
func Topic(name string) (string, error) {
	if name == "*" {
		all, err := AllTopics()
		if err != nil {
			return "", err
		}
		return Topics(all...)
	}
	content, err := topics.ReadFile(name + ".md")
	if err != nil {
		return "", fmt.Errorf("topic %q not found: %w", name, err)
	}
	return string(content), nil
}

// Topics concatenates the content of several topics, expanding "*".
func Topics(names ...string) (string, error) {
	var b strings.Builder
	for _, name := range names {
		content, err := Topic(name)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// AllTopics lists the available topic names, sorted. The readme is the index,
// not a topic.
func AllTopics() ([]string, error) {
	entries, err := fs.Glob(topics, "*.md")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		name := strings.TrimSuffix(path.Base(entry), ".md")
		if name == "readme" {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

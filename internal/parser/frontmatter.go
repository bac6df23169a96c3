package parser

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/specforge/internal/domain"
)

const fence = "---"

// splitFrontMatter separates a leading YAML block fenced by --- lines from
// the markdown body. A document without a closing fence has no front matter.
func splitFrontMatter(content string) (map[string]any, string, error) {
	if !strings.HasPrefix(content, fence+"\n") {
		return nil, content, nil
	}
	rest := content[len(fence)+1:]

	var raw, body string
	switch {
	case strings.HasPrefix(rest, fence+"\n"):
		body = rest[len(fence)+1:]
	case rest == fence:
	default:
		end := strings.Index(rest, "\n"+fence+"\n")
		if end >= 0 {
			raw, body = rest[:end], rest[end+len(fence)+2:]
		} else if strings.HasSuffix(rest, "\n"+fence) {
			raw = strings.TrimSuffix(rest, "\n"+fence)
		} else {
			return nil, content, nil
		}
	}

	meta := make(map[string]any)
	if strings.TrimSpace(raw) == "" {
		return meta, body, nil
	}
	if err := yaml.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, "", &domain.MalformedInputError{Format: domain.FormatMarkdown, Err: err}
	}
	if meta == nil {
		meta = make(map[string]any)
	}
	return meta, body, nil
}

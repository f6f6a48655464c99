package processor

import (
	"log/slog"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/mfenderov/llmsref/internal/markdown"
)

// Processor cleans document bodies before they are summarized.
type Processor struct{}

// New creates a new body processor.
func New() *Processor {
	return &Processor{}
}

// Convert transforms HTML content into Markdown.
func (p *Processor) Convert(htmlContent string) (string, error) {
	if htmlContent == "" {
		return "", nil
	}

	md, err := htmltomarkdown.ConvertString(htmlContent)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(md), nil
}

// Normalize rewrites raw HTML blocks inside a markdown body as markdown.
// Blocks are separated by blank lines. Fenced code and everything that is
// not an HTML block is kept byte for byte.
func (p *Processor) Normalize(body string) string {
	lines := strings.Split(body, "\n")
	out := make([]string, 0, len(lines))
	var block []string
	inFence := false

	flush := func() {
		if len(block) == 0 {
			return
		}
		text := strings.Join(block, "\n")
		block = nil

		if markdown.LooksLikeHTML(text) {
			md, err := p.Convert(text)
			if err != nil {
				slog.Debug("html block left as is", "error", err)
			} else {
				text = md
			}
		}
		out = append(out, text)
	}

	for _, line := range lines {
		if isFence(line) {
			flush()
			inFence = !inFence
			out = append(out, line)
			continue
		}
		if inFence {
			out = append(out, line)
			continue
		}
		if strings.TrimSpace(line) == "" {
			flush()
			out = append(out, line)
			continue
		}
		block = append(block, line)
	}
	flush()

	return strings.Join(out, "\n")
}

func isFence(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

package handler

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var sanitizerStrict = bluemonday.StrictPolicy()

func mdToHTML(md string) []byte {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(md))

	htmlFlags := html.CommonFlags | html.HrefTargetBlank
	opts := html.RendererOptions{Flags: htmlFlags}
	renderer := html.NewRenderer(opts)

	return markdown.Render(doc, renderer)
}

// safeHTML renders stored post content to HTML fit for embedding.
// Whatever the author wrote, the output passes the UGC policy.
func safeHTML(content string) string {
	return string(bluemonday.UGCPolicy().SanitizeBytes(mdToHTML(content)))
}

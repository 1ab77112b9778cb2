// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"bytes"
	"html"
	"io"
	"regexp"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/util"
)

// DefaultCodeStyle is the chroma style used for CSS generation.
const DefaultCodeStyle = "monokai"

var classPattern = regexp.MustCompile(`^[a-zA-Z0-9\s_-]+$`)

// HTML renders markdown to sanitized HTML with class-based code highlighting.
type HTML struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	code   *codeRenderer
}

// NewHTML creates an HTML renderer.
func NewHTML() *HTML {
	code := &codeRenderer{
		formatter: chromahtml.New(chromahtml.WithClasses(true)),
		style:     styles.Get(DefaultCodeStyle),
	}

	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(util.Prioritized(code, 100)),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(classPattern).OnElements("span", "pre", "code", "div")

	return &HTML{md: md, policy: policy, code: code}
}

// Render implements Renderer.
func (h *HTML) Render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := h.md.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return h.policy.Sanitize(buf.String()), nil
}

// WriteCSS writes the stylesheet matching the highlighted code classes.
func (h *HTML) WriteCSS(w io.Writer) error {
	return h.code.formatter.WriteCSS(w, h.code.style)
}

// =============================================================================
// FENCED CODE
// =============================================================================

type codeRenderer struct {
	formatter *chromahtml.Formatter
	style     *chroma.Style
}

func (r *codeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCode)
}

func (r *codeRenderer) renderFencedCode(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.FencedCodeBlock)

	var code bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}

	lexer := lexers.Get(string(n.Language(source)))
	if lexer == nil {
		lexer = lexers.Analyse(code.String())
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}

	it, err := chroma.Coalesce(lexer).Tokenise(nil, code.String())
	if err != nil {
		w.WriteString("<pre><code>")
		w.WriteString(html.EscapeString(code.String()))
		w.WriteString("</code></pre>\n")
		return ast.WalkSkipChildren, nil
	}
	if err := r.formatter.Format(w, r.style, it); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkSkipChildren, nil
}

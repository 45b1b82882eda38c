package dialog

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/template"
)

const maxPromptOutput = 16 * 1024

// promptCache caches parsed prompt templates to avoid re-parsing per turn.
var promptCache sync.Map

// promptCtx is the data available inside prompt template expressions.
type promptCtx struct {
	Draft map[string]string
}

var promptFuncs = template.FuncMap{
	// field renders a draft value, substituting "(none)" for fields the
	// user skipped or never answered.
	"field": func(draft map[string]string, key string) string {
		if v := draft[key]; v != "" {
			return v
		}
		return "(none)"
	},
}

// RenderPrompt evaluates a prompt template against the collected draft.
// Plain strings without template markers pass through unparsed.
func RenderPrompt(prompt string, draft map[string]string) (string, error) {
	if !strings.Contains(prompt, "{{") {
		return prompt, nil
	}
	return renderTemplate(prompt, draft)
}

// limitWriter caps output from template.Execute.
type limitWriter struct {
	w       io.Writer
	n       int64
	written int64
}

func (lw *limitWriter) Write(p []byte) (int, error) {
	if lw.written+int64(len(p)) > lw.n {
		allowed := lw.n - lw.written
		if allowed > 0 {
			n, err := lw.w.Write(p[:allowed])
			lw.written += int64(n)
			if err != nil {
				return n, err
			}
		}
		return 0, fmt.Errorf("prompt output exceeds %d bytes", lw.n)
	}
	n, err := lw.w.Write(p)
	lw.written += int64(n)
	return n, err
}

func renderTemplate(tmplStr string, draft map[string]string) (string, error) {
	var tmpl *template.Template
	if cached, ok := promptCache.Load(tmplStr); ok {
		tmpl = cached.(*template.Template)
	} else {
		var err error
		tmpl, err = template.New("").Funcs(promptFuncs).Parse(tmplStr)
		if err != nil {
			return "", err
		}
		promptCache.Store(tmplStr, tmpl)
	}

	var buf bytes.Buffer
	lw := &limitWriter{w: &buf, n: maxPromptOutput}
	if err := tmpl.Execute(lw, promptCtx{Draft: draft}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

package web

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/xela07ax/logdash/internal/dom"
)

//go:embed index.html
var indexHTML []byte

// LoadPage разбирает шаблон страницы: файл из path, если задан, иначе встроенный.
func LoadPage(path string) (*dom.Document, error) {
	src := indexHTML
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read page template %s: %w", path, err)
		}
		src = data
	}
	return dom.Parse(bytes.NewReader(src))
}

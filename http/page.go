package http

import (
	"embed"
	"html/template"
	"io"
	"strconv"

	"goldpredict/app"
)

//go:embed templates/index.html
var templateFS embed.FS

// PageRenderer 渲染预测页面
type PageRenderer struct {
	tmpl *template.Template
}

func NewPageRenderer() (*PageRenderer, error) {
	tmpl, err := template.New("index.html").Funcs(template.FuncMap{
		"price": formatInput,
	}).ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, err
	}
	return &PageRenderer{tmpl: tmpl}, nil
}

func (p *PageRenderer) Render(w io.Writer, v app.View) error {
	return p.tmpl.Execute(w, v)
}

// formatInput 输入框的值，0 与控件默认值一致
func formatInput(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

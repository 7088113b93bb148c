// Package web はバイナリに埋め込まれたHTMLページのレンダリングを提供する。
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/layout.html templates/pages/*.html
var templatesFS embed.FS

// IndexPage はトップページ（/）のページ名。
const IndexPage = "index"

// toolPages はナビゲーションに並ぶ各ツールページのページ名。
var toolPages = []string{
	"mindmap", "kanban", "resume", "study", "job", "event", "budget", "idea",
	"code", "mock", "time", "flashcard", "quiz", "swot", "goal", "wireframe",
	"color", "pitch", "feedback", "task", "resource", "timeline", "mindfulness",
	"freelance", "whiteboard", "summarizer", "jobapp", "eventfeedback", "portfolio",
}

// PageData はページテンプレートに渡すデータ。
type PageData struct {
	Name     string
	LoggedIn bool
	Username string
	Nav      []string
}

// Renderer はページ名ごとに解析済みのテンプレートを保持する。
// 生成後は読み取り専用のため、複数のゴルーチンから共有できる。
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer は埋め込みテンプレートをすべて解析したRendererを生成する。
func NewRenderer() (*Renderer, error) {
	layout, err := template.ParseFS(templatesFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout template: %w", err)
	}

	names := PageNames()
	r := &Renderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		t, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout for %s: %w", name, err)
		}
		if _, err := t.ParseFS(templatesFS, "templates/pages/"+name+".html"); err != nil {
			return nil, fmt.Errorf("failed to parse page template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// PageNames はトップページを含む全ページ名を返す。
func PageNames() []string {
	return append([]string{IndexPage}, toolPages...)
}

// Has はページ名が存在するかどうかを返す。
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Render は指定ページをwに書き込む。
// 途中までの出力を避けるため、一度バッファに実行してから書き込む。
func (r *Renderer) Render(w io.Writer, name string, data PageData) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page: %s", name)
	}

	data.Name = name
	if data.Nav == nil {
		data.Nav = toolPages
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("failed to render page %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

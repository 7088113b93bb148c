// Package security はアプリケーションのセキュリティ機能を提供する。
//
// HTMLSanitizer はアプリケーションが組み立てたHTML断片（RSSアイテムのdescription等）を
// 配信前に検査し、許可されたタグと属性のみを残す。
// ユーザーが投稿したテキスト自体は加工せずに保存し、HTMLに埋め込む側でエスケープする。
package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// HTMLSanitizer はHTML断片のサニタイズ機能のインターフェースを定義する。
type HTMLSanitizer interface {
	// SanitizeHTML は許可リストに含まれないタグ・属性を除去したHTMLを返す。
	// エスケープ済みの文字参照はそのまま保持される。
	SanitizeHTML(raw string) string
}

// htmlSanitizer はHTMLSanitizerの実装。
// bluemondayのポリシーはスレッドセーフに共有できる。
type htmlSanitizer struct {
	policy *bluemonday.Policy
}

// NewHTMLSanitizer はHTMLSanitizerの新しいインスタンスを生成する。
// 段落と強調のみを許可する。
func NewHTMLSanitizer() *htmlSanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "strong", "em", "br")
	return &htmlSanitizer{policy: p}
}

// SanitizeHTML は許可されていないマークアップを除去する。
func (s *htmlSanitizer) SanitizeHTML(raw string) string {
	if raw == "" {
		return ""
	}
	return s.policy.Sanitize(raw)
}

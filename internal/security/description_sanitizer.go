// Package security はアプリケーションのセキュリティ機能を提供する。
//
// DescriptionSanitizer はギグ・機材リスティングの説明文HTMLをサニタイズし、
// XSS攻撃からユーザーを保護する。bluemondayの許可リストベースのポリシーで、
// 安全な整形タグのみを通過させる。
package security

import "github.com/microcosm-cc/bluemonday"

// DescriptionSanitizer はリスティング説明文のサニタイズ機能のインターフェース。
// リスティングの作成・更新時に説明文の保存前に適用する。
type DescriptionSanitizer interface {
	// Sanitize は説明文HTMLをサニタイズして安全なHTMLを返す。
	// 許可タグ（p, br, ul, ol, li, strong, em, code）のみを通過させ、
	// script, iframe, styleタグおよびon*イベント属性を除去する。
	// 空文字列の入力には空文字列を返す。
	// 同一入力に対して常に同一出力を返す（冪等）。
	Sanitize(raw string) string
}

// descriptionSanitizer はDescriptionSanitizerの実装。
// bluemondayのポリシーを保持し、スレッドセーフにサニタイズ処理を行う。
type descriptionSanitizer struct {
	policy *bluemonday.Policy
}

// NewDescriptionSanitizer はDescriptionSanitizerの新しいインスタンスを生成する。
// リスティング説明文はリンクや画像を必要としないため、
// 許可リストは整形タグのみに絞る。
func NewDescriptionSanitizer() *descriptionSanitizer {
	p := bluemonday.NewPolicy()

	// 許可リストに含めないタグ（script, iframe, style, a, img等）と
	// on*イベント属性は自動的に除去される
	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"strong", "em", "code",
	)

	return &descriptionSanitizer{
		policy: p,
	}
}

// Sanitize は説明文HTMLをサニタイズして安全なHTMLを返す。
func (s *descriptionSanitizer) Sanitize(raw string) string {
	return s.policy.Sanitize(raw)
}

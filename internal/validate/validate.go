// Package validate は宣言的スキーマによるリクエストペイロードの検証を提供する。
//
// Validateは最初の違反で打ち切らず、全フィールドのエラーを収集して返す。
// 出力DataにはSchemaに宣言されたフィールドのみが含まれ、未知のフィールドは
// 破棄される（スキーマが出力の形を定義する）。
package validate

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
)

// Kind はフィールドの型種別を表す。
type Kind int

const (
	// KindString は文字列フィールド。
	KindString Kind = iota
	// KindEmail はメールアドレス形式の文字列フィールド。
	KindEmail
	// KindNumber は数値フィールド（JSONではfloat64）。
	KindNumber
	// KindBool は真偽値フィールド。
	KindBool
	// KindStringSlice は文字列配列フィールド。
	KindStringSlice
	// KindEnum は許可値リストを持つ文字列フィールド。
	KindEnum
)

// Rule は1フィールドの検証ルール。
type Rule struct {
	Kind     Kind
	Required bool
	MinLen   int      // KindString: 最小長（0は無制限）
	MaxLen   int      // KindString: 最大長（0は無制限）
	Min      *float64 // KindNumber: 最小値
	Max      *float64 // KindNumber: 最大値
	Enum     []string // KindEnum: 許可値
}

// Schema はフィールド名から検証ルールへのマッピング。
type Schema map[string]Rule

// FieldError は1フィールドの検証エラー。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result は検証の結果。エラーの場合でもpanicやerror returnは行わない。
type Result struct {
	Valid  bool
	Data   map[string]any
	Errors []FieldError
}

// Validate はペイロードをスキーマに対して検証する。
// すべてのルール違反を収集し、フィールド名順にソートして返す。
func Validate(schema Schema, payload map[string]any) Result {
	result := Result{
		Data: make(map[string]any, len(schema)),
	}

	for field, rule := range schema {
		raw, present := payload[field]
		if !present || raw == nil {
			if rule.Required {
				result.Errors = append(result.Errors, FieldError{
					Field:   field,
					Message: fmt.Sprintf("%s is required", field),
				})
			}
			continue
		}

		value, fieldErr := checkField(field, rule, raw)
		if fieldErr != nil {
			result.Errors = append(result.Errors, *fieldErr)
			continue
		}
		result.Data[field] = value
	}

	sort.Slice(result.Errors, func(i, j int) bool {
		return result.Errors[i].Field < result.Errors[j].Field
	})

	result.Valid = len(result.Errors) == 0
	return result
}

// checkField は1フィールドをルールに対して検証し、正規化済みの値を返す。
func checkField(field string, rule Rule, raw any) (any, *FieldError) {
	switch rule.Kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return nil, &FieldError{Field: field, Message: fmt.Sprintf("%s must be a string", field)}
		}
		s = strings.TrimSpace(s)
		if rule.Required && s == "" {
			return nil, &FieldError{Field: field, Message: fmt.Sprintf("%s is required", field)}
		}
		if rule.MinLen > 0 && len(s) < rule.MinLen {
			return nil, &FieldError{Field: field, Message: fmt.Sprintf("%s must be at least %d characters", field, rule.MinLen)}
		}
		if rule.MaxLen > 0 && len(s) > rule.MaxLen {
			return nil, &FieldError{Field: field, Message: fmt.Sprintf("%s must be at most %d characters", field, rule.MaxLen)}
		}
		return s, nil

	case KindEmail:
		s, ok := raw.(string)
		if !ok {
			return nil, &FieldError{Field: field, Message: fmt.Sprintf("%s must be a string", field)}
		}
		s = strings.TrimSpace(strings.ToLower(s))
		if _, err := mail.ParseAddress(s); err != nil {
			return nil, &FieldError{Field: field, Message: fmt.Sprintf("%s must be a valid email address", field)}
		}
		return s, nil

	case KindNumber:
		n, ok := toFloat(raw)
		if !ok {
			return nil, &FieldError{Field: field, Message: fmt.Sprintf("%s must be a number", field)}
		}
		if rule.Min != nil && n < *rule.Min {
			return nil, &FieldError{Field: field, Message: fmt.Sprintf("%s must be at least %v", field, *rule.Min)}
		}
		if rule.Max != nil && n > *rule.Max {
			return nil, &FieldError{Field: field, Message: fmt.Sprintf("%s must be at most %v", field, *rule.Max)}
		}
		return n, nil

	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return nil, &FieldError{Field: field, Message: fmt.Sprintf("%s must be a boolean", field)}
		}
		return b, nil

	case KindStringSlice:
		items, ok := raw.([]any)
		if !ok {
			// 既に[]stringの場合も受け付ける（ハンドラ経由でない呼び出し用）
			if ss, ok := raw.([]string); ok {
				return ss, nil
			}
			return nil, &FieldError{Field: field, Message: fmt.Sprintf("%s must be an array of strings", field)}
		}
		ss := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, &FieldError{Field: field, Message: fmt.Sprintf("%s must be an array of strings", field)}
			}
			s = strings.TrimSpace(s)
			if s != "" {
				ss = append(ss, s)
			}
		}
		return ss, nil

	case KindEnum:
		s, ok := raw.(string)
		if !ok {
			return nil, &FieldError{Field: field, Message: fmt.Sprintf("%s must be a string", field)}
		}
		for _, allowed := range rule.Enum {
			if s == allowed {
				return s, nil
			}
		}
		return nil, &FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s must be one of: %s", field, strings.Join(rule.Enum, ", ")),
		}
	}

	return nil, &FieldError{Field: field, Message: fmt.Sprintf("%s has an unknown rule kind", field)}
}

// toFloat はJSONデコード結果の数値表現をfloat64に正規化する。
func toFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// --- Resultヘルパー ---

// Str はDataから文字列値を取り出す。存在しない場合は空文字列。
func (r Result) Str(field string) string {
	s, _ := r.Data[field].(string)
	return s
}

// Num はDataから数値を整数として取り出す。存在しない場合は0。
func (r Result) Num(field string) int {
	n, _ := r.Data[field].(float64)
	return int(n)
}

// NumPtr はDataの数値を*intとして取り出す。存在しない場合はnil。
func (r Result) NumPtr(field string) *int {
	n, ok := r.Data[field].(float64)
	if !ok {
		return nil
	}
	v := int(n)
	return &v
}

// Bool はDataから真偽値を取り出す。（値, 存在フラグ）を返す。
func (r Result) Bool(field string) (bool, bool) {
	b, ok := r.Data[field].(bool)
	return b, ok
}

// StrSlice はDataから文字列配列を取り出す。存在しない場合はnil。
func (r Result) StrSlice(field string) []string {
	ss, _ := r.Data[field].([]string)
	return ss
}

// Has はDataにフィールドが存在するかを返す。
func (r Result) Has(field string) bool {
	_, ok := r.Data[field]
	return ok
}

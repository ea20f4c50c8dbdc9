// Package query はリストAPIのクエリパラメータ正規化とSQL断片の構築を提供する。
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 50

	// DefaultSort は作成日時の降順。
	DefaultSort = "-created_at"
)

// ListParams は正規化済みのリストクエリパラメータ。
type ListParams struct {
	Page   int
	Limit  int
	Search string
	Sort   string
}

// Offset はSQLのOFFSET値を返す。
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParseListParams はクエリ文字列からListParamsを構築する。
// pageは1以上にクランプし、limitは[1,50]にクランプする。
// 不正な数値はデフォルト値（page=1, limit=10）として扱う。
func ParseListParams(values url.Values) ListParams {
	p := ListParams{
		Page:   defaultPage,
		Limit:  defaultLimit,
		Search: strings.TrimSpace(values.Get("search")),
		Sort:   values.Get("sort"),
	}

	if raw := values.Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			p.Page = n
		}
	}
	if raw := values.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			p.Limit = n
		}
	}

	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 1
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Sort == "" {
		p.Sort = DefaultSort
	}

	return p
}

// ParseSort はソート指定を（カラム名, 降順フラグ）に分解する。
// 先頭の"-"は降順を意味し、カラム名は残りの部分。
func ParseSort(spec string) (string, bool) {
	if strings.HasPrefix(spec, "-") {
		return spec[1:], true
	}
	return spec, false
}

// SortClause はソート指定からORDER BY句の本体を構築する。
// allowedはAPI上のソートキーからSQLカラム名へのマッピングで、
// 許可リスト外のキーはfallback（降順）に落とす（SQLインジェクション対策）。
func SortClause(spec string, allowed map[string]string, fallback string) string {
	field, desc := ParseSort(spec)

	column, ok := allowed[field]
	if !ok {
		return fallback + " DESC"
	}
	if desc {
		return column + " DESC"
	}
	return column + " ASC"
}

// SearchCondition は全文検索条件のSQL断片とバインド引数を構築する。
// 空または空白のみのテキストでは常に真（空文字列の条件）を返す。
// それ以外は指定カラム群に対する大文字小文字を区別しない部分一致のORで、
// プレースホルダ番号はargIndexから採番する（パターンは1引数を共有する）。
func SearchCondition(text string, columns []string, argIndex int) (string, []any) {
	text = strings.TrimSpace(text)
	if text == "" || len(columns) == 0 {
		return "", nil
	}

	placeholder := fmt.Sprintf("$%d", argIndex)
	conds := make([]string, len(columns))
	for i, col := range columns {
		conds[i] = col + " ILIKE " + placeholder
	}

	return "(" + strings.Join(conds, " OR ") + ")", []any{"%" + text + "%"}
}

// Pagination はリストレスポンスのページネーションメタデータ。
type Pagination struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNextPage  bool `json:"hasNextPage"`
	HasPrevPage  bool `json:"hasPrevPage"`
}

// NewPagination はページネーションメタデータを構築する。
// totalPagesはceil(total/limit)。
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
		HasNextPage:  page < totalPages,
		HasPrevPage:  page > 1,
	}
}

package middleware

import (
	"net/http"
	"time"
)

// RequestRecorder はメトリクスミドルウェアが必要とする収集インターフェース。
// metrics.Collectorの部分集合として定義する。
type RequestRecorder interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	IncInFlight()
	DecInFlight()
}

// NewMetricsMiddleware はリクエストごとにステータスコード・レイテンシ・
// 処理中リクエスト数を記録するミドルウェアを返す。
func NewMetricsMiddleware(rec RequestRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec.IncInFlight()
			defer rec.DecInFlight()

			sr := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(sr, r)

			rec.RecordHTTPStatus(sr.statusCode)
			rec.RecordRequestLatency(time.Since(start))
		})
	}
}

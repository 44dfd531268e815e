package middleware

import (
	"net/http"
	"time"

	"aiPlanner/internal/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.status != 0 {
		return
	}
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if sr.status == 0 {
		sr.WriteHeader(http.StatusOK)
	}
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

func levelFor(status int) zapcore.Level {
	switch {
	case status >= 500:
		return zap.ErrorLevel
	case status >= 400:
		return zap.WarnLevel
	default:
		return zap.InfoLevel
	}
}

// Logging пишет одну строку на вход и одну на выход. В строке выхода есть владелец сессии
// и бизнес-код ошибки, если обработчик его выставил. Ставится после RequestID
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		logger.HttpRequestInfo(r, "HTTP_IN: Начало запроса",
			zap.String("request_id", GetRequestID(r.Context())))

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		fields := []zap.Field{
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Int("status", rec.status),
			zap.Int("bytes_written", rec.bytes),
			zap.Duration("ms", time.Since(start)),
		}
		if meta := metaFrom(r.Context()); meta != nil {
			if meta.username != "" {
				fields = append(fields, zap.String("username", meta.username))
			}
			if meta.errorCode != "" {
				fields = append(fields, zap.String("error_code", meta.errorCode))
			}
		}
		logger.Log(levelFor(rec.status), "HTTP_OUT: Завершение запроса", fields...)
	})
}

package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const requestKey contextKey = "request"

// requestMeta живёт весь запрос: Auth дописывает пользователя, обработчики код ошибки,
// Logging читает всё после ответа
type requestMeta struct {
	id        string
	username  string
	errorCode string
}

func metaFrom(ctx context.Context) *requestMeta {
	meta, _ := ctx.Value(requestKey).(*requestMeta)
	return meta
}

// RequestID берёт X-Request-ID клиента или выдаёт новый
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		ctx := context.WithValue(r.Context(), requestKey, &requestMeta{id: id})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	if meta := metaFrom(ctx); meta != nil {
		return meta.id
	}
	return ""
}

// SetErrorCode запоминает бизнес-код ошибки ответа для журнала запроса
func SetErrorCode(ctx context.Context, code string) {
	if meta := metaFrom(ctx); meta != nil {
		meta.errorCode = code
	}
}

func setUsername(ctx context.Context, username string) {
	if meta := metaFrom(ctx); meta != nil {
		meta.username = username
	}
}

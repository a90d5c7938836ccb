package requestctx

import "context"

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	langKey      ctxKey = "lang"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	if value, ok := ctx.Value(requestIDKey).(string); ok {
		return value
	}
	return ""
}

func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey, lang)
}

// Lang returns the response language chosen for the request, empty when none was set.
func Lang(ctx context.Context) string {
	if value, ok := ctx.Value(langKey).(string); ok {
		return value
	}
	return ""
}

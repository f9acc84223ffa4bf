package requestdata

import (
	"context"

	"github.com/google/uuid"
)

// RequestData is the per-request identity carried through the context by the
// auth middleware. The session token is never read from ambient state; every
// call site receives it through here.
type RequestData struct {
	UserID      uuid.UUID
	Email       string
	TokenString string
}

type contextKey struct{}

var requestDataKey contextKey

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey).(*RequestData); ok {
		return rd
	}
	return nil
}

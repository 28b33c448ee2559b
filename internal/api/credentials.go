package api

import "context"

// Credentials identify the caller of a resource request.
type Credentials struct {
	Token    string
	TenantID string
}

type credentialsKey struct{}

func WithCredentials(ctx context.Context, creds Credentials) context.Context {
	return context.WithValue(ctx, credentialsKey{}, creds)
}

func CredentialsFromContext(ctx context.Context) (Credentials, bool) {
	creds, ok := ctx.Value(credentialsKey{}).(Credentials)
	return creds, ok
}

package schema

import (
	"context"
	"io/fs"
	"net/http"
	"time"
)

// Loader fetches schema documents from a Source.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// LoaderOptions configures how documents are fetched.
type LoaderOptions struct {
	// FileSystem backs SourceKindFS lookups.
	FileSystem fs.FS
	// HTTPClient, when set, is used for SourceKindURL fetches.
	HTTPClient *http.Client
	// AllowHTTPFallback enables URL fetching with a default client when no
	// HTTPClient was supplied.
	AllowHTTPFallback bool
	// RequestTimeout bounds each remote fetch.
	RequestTimeout time.Duration
}

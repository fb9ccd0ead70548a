package model

import "time"

// TTL is the lifetime of every issued access token
const TTL = time.Hour

// DefaultDisplayName is shown when a link carries no usable document name
const DefaultDisplayName = "Secure Document"

// ResourceRef points at the document a token grants access to.
// It is either Remote or Embedded.
type ResourceRef interface {
	isResourceRef()
}

// Remote is a document hosted at an absolute URL outside this service
type Remote struct {
	URL string `json:"url"`
}

// Embedded is a document previously stored in the blob store
type Embedded struct {
	ID string `json:"id"`
}

func (Remote) isResourceRef()   {}
func (Embedded) isResourceRef() {}

// AccessToken is the (resource, name, expiry) triple carried by a share link.
// It is never persisted: the link is the token.
type AccessToken struct {
	Resource    ResourceRef `json:"resource"`
	DisplayName string      `json:"display_name"`
	ExpiresAt   int64       `json:"expires_at"` // epoch milliseconds
}

// Expiry returns ExpiresAt as a time.Time
func (t AccessToken) Expiry() time.Time {
	return time.UnixMilli(t.ExpiresAt)
}

// IsExpired reports whether now is strictly past the expiry instant
func (t AccessToken) IsExpired(now time.Time) bool {
	return now.UnixMilli() > t.ExpiresAt
}

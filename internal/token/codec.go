// Package token encodes access tokens into share-link fragments and decodes
// them back.
//
// A fragment has the form
//
//	#/view?url=<percent-encoded>&name=<percent-encoded>&exp=<epoch-ms>
//
// The token carries no signature. Anyone holding the link before expiry can
// open the document, and anyone can hand-edit exp.
package token

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/existflow/secureview/internal/model"
)

// RoutePrefix is the fragment prefix of the viewer route
const RoutePrefix = "#/view"

// storeScheme prefixes locators of Embedded resources
const storeScheme = "store:"

// Reasons attached to Invalid results
const (
	ReasonMissingParameter = "missing parameter"
	ReasonMalformedExpiry  = "malformed expiry"
	ReasonMalformedSource  = "malformed document locator"
)

// Kind classifies a decoded link
type Kind int

const (
	Invalid Kind = iota
	Valid
	Expired
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case Valid:
		return "valid"
	case Expired:
		return "expired"
	default:
		return "invalid"
	}
}

// Result is the outcome of decoding a fragment. Token is set for Valid,
// Reason for Invalid and ExpiresAt for Expired.
type Result struct {
	Kind      Kind
	Token     model.AccessToken
	Reason    string
	ExpiresAt int64
}

func invalid(reason string) Result {
	return Result{Kind: Invalid, Reason: reason}
}

// At evaluates a Valid result against now. A token whose expiry lies strictly
// before now becomes Expired; any other result is returned unchanged.
func (r Result) At(now time.Time) Result {
	if r.Kind != Valid || !r.Token.IsExpired(now) {
		return r
	}
	return Result{Kind: Expired, ExpiresAt: r.Token.ExpiresAt}
}

// IsViewRoute reports whether fragment addresses the viewer route. The
// leading '#' is optional.
func IsViewRoute(fragment string) bool {
	return strings.HasPrefix(normalize(fragment), RoutePrefix)
}

// Encode serializes t into a viewer fragment. It is deterministic.
func Encode(t model.AccessToken) string {
	var b strings.Builder
	b.WriteString(RoutePrefix)
	b.WriteString("?url=")
	b.WriteString(escape(Locator(t.Resource)))
	b.WriteString("&name=")
	b.WriteString(escape(t.DisplayName))
	b.WriteString("&exp=")
	b.WriteString(strconv.FormatInt(t.ExpiresAt, 10))
	return b.String()
}

// Decode parses a viewer fragment. It never returns Expired; use At for that.
func Decode(fragment string) Result {
	fragment = normalize(fragment)

	var rawQuery string
	if i := strings.IndexByte(fragment, '?'); i >= 0 {
		rawQuery = fragment[i+1:]
	}
	// Malformed pairs are dropped; what remains is still usable.
	params, _ := url.ParseQuery(rawQuery)

	locator := params.Get("url")
	expStr := params.Get("exp")
	if locator == "" || expStr == "" {
		return invalid(ReasonMissingParameter)
	}

	exp, err := strconv.ParseInt(strings.TrimSpace(expStr), 10, 64)
	if err != nil {
		return invalid(ReasonMalformedExpiry)
	}

	ref, ok := ParseLocator(locator)
	if !ok {
		return invalid(ReasonMalformedSource)
	}

	name := params.Get("name")
	if name == "" {
		name = model.DefaultDisplayName
	}

	return Result{
		Kind: Valid,
		Token: model.AccessToken{
			Resource:    ref,
			DisplayName: name,
			ExpiresAt:   exp,
		},
	}
}

// Locator renders a resource reference as the value of the url parameter
func Locator(ref model.ResourceRef) string {
	switch r := ref.(type) {
	case model.Remote:
		return r.URL
	case model.Embedded:
		return storeScheme + r.ID
	default:
		return ""
	}
}

// ParseLocator is the inverse of Locator
func ParseLocator(s string) (model.ResourceRef, bool) {
	if id, ok := strings.CutPrefix(s, storeScheme); ok {
		if id == "" || strings.ContainsAny(id, "/?#") {
			return nil, false
		}
		return model.Embedded{ID: id}, true
	}
	if s == "" {
		return nil, false
	}
	return model.Remote{URL: s}, true
}

func normalize(fragment string) string {
	if strings.HasPrefix(fragment, "#") {
		return fragment
	}
	return "#" + fragment
}

// escape percent-encodes s the way browsers' encodeURIComponent does for
// spaces, so links stay free of '+'.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

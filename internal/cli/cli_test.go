package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/existflow/secureview/internal/clock"
	"github.com/existflow/secureview/internal/issuer"
)

func TestSplitLink(t *testing.T) {
	origin, fragment := splitLink(" https://sv.example.com/#/view?url=x&exp=1 ")
	assert.Equal(t, "https://sv.example.com/", origin)
	assert.Equal(t, "#/view?url=x&exp=1", fragment)

	origin, fragment = splitLink("https://sv.example.com/")
	assert.Equal(t, "https://sv.example.com/", origin)
	assert.Empty(t, fragment)
}

func TestDescribe(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clk := &clock.Fixed{T: now}

	link, err := issuer.New(clk, nil, "https://sv.example.com").IssueURL("https://example.com/brochure.pdf")
	require.NoError(t, err)

	out := describe(clk, link.Fragment)
	assert.Contains(t, out, "Valid link")
	assert.Contains(t, out, "brochure.pdf")
	assert.Contains(t, out, "(in 60m)")

	clk.Advance(2 * time.Hour)
	assert.Contains(t, describe(clk, link.Fragment), "Access Expired")

	out = describe(clk, "#/view?name=x&exp=1")
	assert.Contains(t, out, "Invalid access link")
	assert.Contains(t, out, "missing parameter")

	assert.Equal(t, "Not a share link\n", describe(clk, ""))
}

// steppingClock advances by step on every reading
type steppingClock struct {
	t    time.Time
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

func TestDescribe_SingleReading(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	link, err := issuer.New(&clock.Fixed{T: start}, nil, "https://sv.example.com").IssueURL("https://example.com/brochure.pdf")
	require.NoError(t, err)

	// A second reading would land past expiry
	clk := &steppingClock{t: start.Add(59*time.Minute + 30*time.Second), step: time.Hour}
	out := describe(clk, link.Fragment)
	assert.Contains(t, out, "Valid link")
	assert.Contains(t, out, "(in 0m)")
}

func TestHashAdminKey(t *testing.T) {
	_, err := hashAdminKey([]byte("short"), []byte("short"))
	assert.Error(t, err)

	_, err = hashAdminKey([]byte("long enough"), []byte("different!!"))
	assert.EqualError(t, err, "keys do not match")

	hash, err := hashAdminKey([]byte("long enough"), []byte("long enough"))
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("long enough")))
}

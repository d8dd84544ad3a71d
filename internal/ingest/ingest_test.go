package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postingHTML = `<!DOCTYPE html>
<html>
<head><title>Senior Engineer - Acme</title><style>.x{}</style></head>
<body>
  <nav>Home | Jobs | About</nav>
  <div class="cookie-banner">We use cookies</div>
  <div class="job-description">
    <h1>Senior Engineer</h1>
    <p>Acme builds infrastructure for logistics.</p>
    <p>You will own services end to end.</p>
  </div>
  <footer>Copyright Acme</footer>
  <script>trackPageView()</script>
</body>
</html>`

func TestExtractPostingText(t *testing.T) {
	text, err := ExtractPostingText(postingHTML)
	require.NoError(t, err)

	assert.Contains(t, text, "Senior Engineer")
	assert.Contains(t, text, "logistics")
	assert.NotContains(t, text, "cookies")
	assert.NotContains(t, text, "Copyright")
	assert.NotContains(t, text, "trackPageView")
	assert.NotContains(t, text, "Home | Jobs")
}

func TestExtractPostingTextFallsBackToBody(t *testing.T) {
	text, err := ExtractPostingText(`<html><body><p>Just a paragraph.</p></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "Just a paragraph.", text)
}

func TestJobContextFetchesAndExtracts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(postingHTML))
	}))
	defer srv.Close()

	text, err := JobContext(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Contains(t, text, "own services end to end")
}

func TestJobContextRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := JobContext(context.Background(), srv.URL, nil)

	var ingestErr *Error
	require.ErrorAs(t, err, &ingestErr)
	assert.Contains(t, ingestErr.Message, "404")
}

func TestJobContextRejectsInvalidURL(t *testing.T) {
	_, err := JobContext(context.Background(), "not a url", nil)
	var ingestErr *Error
	assert.ErrorAs(t, err, &ingestErr)
}

func TestClampContext(t *testing.T) {
	short := "a short posting"
	assert.Equal(t, short, ClampContext(short))

	line := strings.Repeat("x", 120)
	long := strings.Repeat(line+"\n", 100)
	clamped := ClampContext(long)
	assert.LessOrEqual(t, len(clamped), MaxContextLength)
	assert.False(t, strings.HasSuffix(clamped, "\n"))
	// Truncation lands on a line boundary, not mid-line.
	for _, l := range strings.Split(clamped, "\n") {
		assert.Len(t, l, 120)
	}
}

func TestNeedsBrowser(t *testing.T) {
	assert.True(t, needsBrowser("   "))
	assert.True(t, needsBrowser("tiny stub page"))
	assert.False(t, needsBrowser(strings.Repeat("job description text ", 50)))
}

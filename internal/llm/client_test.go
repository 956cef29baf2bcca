package llm

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	dwerrors "git.home.luguber.info/inful/docweaver/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, status int, body string) *Client {
	t.Helper()
	c, err := New(Options{APIKey: "test-key", Model: "test-model"})
	require.NoError(t, err)
	c.do = func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     http.Header{"Content-Type": []string{"application/json"}},
		}, nil
	}
	return c
}

func TestChatReturnsTrimmedContent(t *testing.T) {
	c := newTestClient(t, 200, `{"choices":[{"message":{"content":"  translated text \n"}}]}`)
	out, err := c.Chat(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "translated text", out)
}

func TestChatUpstreamErrorIsRetryable(t *testing.T) {
	c := newTestClient(t, 503, `{"error":"overloaded"}`)
	_, err := c.Chat(context.Background(), "", "user")
	require.Error(t, err)
	assert.True(t, dwerrors.IsRetryable(err))
	assert.True(t, dwerrors.IsCategory(err, dwerrors.CategoryNetwork))
}

func TestChatRejectionIsNotRetryable(t *testing.T) {
	c := newTestClient(t, 400, `{"error":"bad request"}`)
	_, err := c.Chat(context.Background(), "", "user")
	require.Error(t, err)
	assert.False(t, dwerrors.IsRetryable(err))
	assert.True(t, dwerrors.IsCategory(err, dwerrors.CategoryValidation))
}

func TestChatEmptyContentIsAnError(t *testing.T) {
	c := newTestClient(t, 200, `{"choices":[{"message":{"content":"   "}}]}`)
	_, err := c.Chat(context.Background(), "", "user")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	c = newTestClient(t, 200, `{"choices":[]}`)
	_, err = c.Chat(context.Background(), "", "user")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Setenv("DOCWEAVER_TEST_KEY", "")
	_, err := New(Options{APIKeyEnv: "DOCWEAVER_TEST_KEY"})
	require.Error(t, err)
	assert.True(t, dwerrors.IsCategory(err, dwerrors.CategoryConfig))
}

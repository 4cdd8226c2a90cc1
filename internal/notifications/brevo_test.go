package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"gurukul-backend/internal/forms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *BrevoClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewBrevoClient("key-123", "office@example.com", "", true)
	require.NotNil(t, c)
	c.endpoint = srv.URL
	return c
}

var submission = forms.Submission{
	ID:        "sub-1",
	Name:      "Ram <script>",
	Email:     "ram@example.com",
	Subject:   "Japan visa",
	Message:   "Need help with COE",
	Status:    forms.StatusPending,
	CreatedAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
}

func TestNewBrevoClientRequiresKeyAndSender(t *testing.T) {
	assert.Nil(t, NewBrevoClient("", "a@example.com", "", false))
	assert.Nil(t, NewBrevoClient("key", " ", "", false))
	assert.Nil(t, NewFormNotifier(nil, "office@example.com"))
}

func TestFormNotificationPayload(t *testing.T) {
	var got brevoSendRequest
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-123", r.Header.Get("api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"<abc@brevo>"}`))
	})

	id, err := NewFormNotifier(c, "inbox@example.com").SendFormSubmissionNotification(context.Background(), submission)
	require.NoError(t, err)
	assert.Equal(t, "<abc@brevo>", id)

	require.Len(t, got.To, 1)
	assert.Equal(t, "inbox@example.com", got.To[0].Email)
	assert.Equal(t, "New enquiry: Japan visa", got.Subject)
	assert.Equal(t, "office@example.com", got.Sender.Name)
	assert.Equal(t, "drop", got.Headers["X-Sib-Sandbox"])
	assert.Contains(t, got.HtmlContent, "Ram &lt;script&gt;")
	assert.NotContains(t, got.HtmlContent, "<script>")
}

func TestFormNotificationSkippedWithoutInbox(t *testing.T) {
	var calls atomic.Int32
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	id, err := NewFormNotifier(c, "").SendFormSubmissionNotification(context.Background(), submission)
	assert.NoError(t, err)
	assert.Empty(t, id)
	assert.Equal(t, int32(0), calls.Load())
}

func TestConfirmationReportsUpstreamFailure(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"invalid_parameter"}`))
	})
	_, err := NewFormNotifier(c, "inbox@example.com").SendFormSubmissionConfirmation(context.Background(), submission)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=400")
}

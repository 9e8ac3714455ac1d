package resend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailseries/pkg/mailer"
	"github.com/dmitrymomot/mailseries/pkg/mailer/resend"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	t.Parallel()

	s, err := resend.New(resend.Config{})
	require.ErrorIs(t, err, resend.ErrMissingAPIKey)
	require.Nil(t, s)
}

func TestSender_Send(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/emails", r.URL.Path)
		require.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"49a3999c-0ce1-4ea6-ab68-afcd6dc2e794"}`))
	}))
	t.Cleanup(srv.Close)

	s, err := resend.New(resend.Config{APIKey: "re_test", BaseURL: srv.URL})
	require.NoError(t, err)

	err = s.Send(context.Background(), &mailer.Email{
		From:    "Team <team@example.com>",
		To:      []string{"alice@example.com"},
		BCC:     []string{"audit@example.com"},
		Subject: "Hi",
		Text:    "Hello",
		Attachments: []mailer.Attachment{
			{Filename: "a.txt", ContentType: "text/plain", Content: []byte("x")},
		},
	})
	require.NoError(t, err)

	require.Equal(t, "Team <team@example.com>", got["from"])
	require.Equal(t, "Hi", got["subject"])
	require.Equal(t, "Hello", got["text"])
	require.Equal(t, []any{"alice@example.com"}, got["to"])
	require.Equal(t, []any{"audit@example.com"}, got["bcc"])
	require.Len(t, got["attachments"], 1)
}

func TestSender_Send_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid from field"}`))
	}))
	t.Cleanup(srv.Close)

	s, err := resend.New(resend.Config{APIKey: "re_test", BaseURL: srv.URL})
	require.NoError(t, err)

	err = s.Send(context.Background(), &mailer.Email{
		From:    "bad",
		To:      []string{"alice@example.com"},
		Subject: "Hi",
		Text:    "Hello",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "resend: failed to send email")
}

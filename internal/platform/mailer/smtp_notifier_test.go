package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/phrazzld/accounts-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type fakeSender struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, messages...)
	return nil
}

func TestNewSMTPNotifier(t *testing.T) {
	n, err := NewSMTPNotifier(config.SMTPConfig{
		Host:     "smtp.example.com",
		Port:     587,
		Username: "mailer",
		Password: "pw",
		From:     "noreply@example.com",
		TLS:      true,
	}, nil)
	require.NoError(t, err)
	assert.NotNil(t, n)

	_, err = NewSMTPNotifier(config.SMTPConfig{Host: "smtp.example.com", Port: 25}, nil)
	assert.Error(t, err, "missing from address")
}

func TestSendResetLink(t *testing.T) {
	fake := &fakeSender{}
	n, err := newSMTPNotifier(fake, "noreply@example.com", nil)
	require.NoError(t, err)

	err = n.SendResetLink(context.Background(), "ana@example.com", "https://reset.example.com/?oobCode=abc")
	require.NoError(t, err)

	require.Len(t, fake.sent, 1)
	msg := fake.sent[0]

	recipients, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"ana@example.com"}, recipients)
	assert.Contains(t, strings.Join(msg.GetFromString(), ","), "noreply@example.com")
	assert.NotEmpty(t, msg.GetGenHeader(mail.HeaderSubject))
}

func TestSendResetLink_Failures(t *testing.T) {
	t.Run("send error", func(t *testing.T) {
		n, err := newSMTPNotifier(&fakeSender{err: errors.New("connection refused")}, "noreply@example.com", nil)
		require.NoError(t, err)

		err = n.SendResetLink(context.Background(), "ana@example.com", "https://reset.example.com")
		assert.ErrorContains(t, err, "connection refused")
	})

	t.Run("invalid recipient", func(t *testing.T) {
		fake := &fakeSender{}
		n, err := newSMTPNotifier(fake, "noreply@example.com", nil)
		require.NoError(t, err)

		assert.Error(t, n.SendResetLink(context.Background(), "not an address", "https://reset.example.com"))
		assert.Error(t, n.SendResetLink(context.Background(), "", "https://reset.example.com"))
		assert.Empty(t, fake.sent)
	})
}

func TestRenderResetBody(t *testing.T) {
	body, err := renderResetBody("https://reset.example.com/?oobCode=abc&mode=resetPassword")
	require.NoError(t, err)

	assert.Contains(t, body, "https://reset.example.com/?oobCode=abc&mode=resetPassword")
	assert.True(t, strings.HasPrefix(body, "Hola,"))
}

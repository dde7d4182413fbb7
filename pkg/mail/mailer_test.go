package mail

import (
	"context"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSendDisabled(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	require.NoError(t, err)

	err = mailer.Send(context.Background(), Message{To: []string{"a@b.com"}})
	require.ErrorIs(t, err, ErrSMTPDisabled)
}

func TestNewSMTPMailerValidatesConfig(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{Enabled: true})
	require.Error(t, err)

	_, err = NewSMTPMailer(SMTPSettings{Enabled: true, Host: "smtp.test"})
	require.Error(t, err)

	_, err = NewSMTPMailer(SMTPSettings{Enabled: true, Host: "smtp.test", Port: 587})
	require.NoError(t, err)
}

func TestSendRejectsInvalidAddresses(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: true, Host: "smtp.test", Port: 587, From: "noreply@test"})
	require.NoError(t, err)

	err = mailer.Send(context.Background(), Message{From: "not an address", To: []string{"a@b.com"}})
	require.Error(t, err)

	err = mailer.Send(context.Background(), Message{From: "noreply@wikibeerdia.com"})
	require.Error(t, err)
}

func TestSendUsesInjectedTransport(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	m := &smtpMailer{
		cfg: SMTPSettings{Enabled: true, Host: "smtp.test", Port: 2525, From: "noreply@wikibeerdia.com", Timeout: time.Second},
		sendFn: func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
			gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
			return nil
		},
	}

	err := m.Send(context.Background(), Message{
		To:      []string{"mark@example.com"},
		Subject: "Verify your email",
		Body:    "<p>hello</p>",
	})
	require.NoError(t, err)
	require.Equal(t, "smtp.test:2525", gotAddr)
	require.Equal(t, "noreply@wikibeerdia.com", gotFrom)
	require.Equal(t, []string{"mark@example.com"}, gotTo)

	raw := string(gotMsg)
	require.Contains(t, raw, "Subject: Verify your email")
	require.Contains(t, raw, "Content-Type: text/html")
	require.True(t, strings.HasSuffix(raw, "<p>hello</p>"))
}

func TestFormatMessageEscapesHeaders(t *testing.T) {
	msg := formatMessage("a@b.com", []string{"c@d.com"}, "subject\r\ninjected", "body")
	require.NotContains(t, string(msg), "\r\ninjected")
}

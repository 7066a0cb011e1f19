package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *recordingDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSMTPSenderBuildsMessage(t *testing.T) {
	d := &recordingDialer{}
	s := &SMTPSender{from: "noreply@example.com", dialer: d}

	require.NoError(t, s.Send(context.Background(), "a@x.com", "Your Verification OTP", "code 123456"))
	require.Len(t, d.sent, 1)

	msg := d.sent[0]
	assert.Equal(t, []string{"noreply@example.com"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"a@x.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"Your Verification OTP"}, msg.GetHeader("Subject"))

	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "code 123456")
}

func TestSMTPSenderWrapsDialError(t *testing.T) {
	cause := errors.New("connection refused")
	s := &SMTPSender{from: "noreply@example.com", dialer: &recordingDialer{err: cause}}

	err := s.Send(context.Background(), "a@x.com", "s", "b")
	assert.ErrorIs(t, err, cause)
}

func TestNewSMTPSenderValidates(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{Port: 587, From: "x@y.com"})
	assert.Error(t, err)
	_, err = NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587})
	assert.Error(t, err)

	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587, From: "x@y.com"})
	require.NoError(t, err)
	assert.NotNil(t, s)
}

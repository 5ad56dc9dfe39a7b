package mailer

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendComposesMessage(t *testing.T) {
	m, err := New(Config{Host: "smtp.example.org", Port: 2525, Username: "u", Password: "p", From: "relief@example.org"})
	require.NoError(t, err)

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
		gotAuth smtp.Auth
	)
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotTo, gotMsg = addr, a, to, string(msg)
		return nil
	}

	require.NoError(t, m.Send(Message{To: "lead@ngo.org", Subject: "Assigned", Body: "<p>hello</p>"}))
	assert.Equal(t, "smtp.example.org:2525", gotAddr)
	assert.Equal(t, []string{"lead@ngo.org"}, gotTo)
	assert.NotNil(t, gotAuth)
	assert.Contains(t, gotMsg, "Subject: Assigned\r\n")
	assert.Contains(t, gotMsg, "Content-Type: text/html; charset=UTF-8")
}

func TestSendValidation(t *testing.T) {
	m, err := New(Config{Host: "localhost", From: "a@b.c"})
	require.NoError(t, err)
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("unreachable") }

	assert.Error(t, m.Send(Message{Subject: "x"}))
	assert.Error(t, m.Send(Message{To: "a@b.c"}))
	assert.Error(t, m.Send(Message{To: "a@b.c\r\nBcc: x@y.z", Subject: "x"}))
	assert.EqualError(t, m.Send(Message{To: "a@b.c", Subject: "x"}), "failed to send email: unreachable")
}

func TestNewRequiresHostAndSender(t *testing.T) {
	_, err := New(Config{From: "a@b.c"})
	assert.Error(t, err)
	_, err = New(Config{Host: "localhost"})
	assert.Error(t, err)
}

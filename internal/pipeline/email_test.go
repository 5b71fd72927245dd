package pipeline

import (
	"strings"
	"testing"
)

func TestNewEmailSenderSplitsRecipients(t *testing.T) {
	es, err := NewEmailSender("from@gmail.com", "app-password", "a@example.com, b@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(es.config.To) != 2 || es.config.To[1] != "b@example.com" {
		t.Errorf("To = %v", es.config.To)
	}
}

func TestNewEmailSenderRequiresFields(t *testing.T) {
	cases := []struct{ from, password, to string }{
		{"", "p", "a@example.com"},
		{"f@gmail.com", "", "a@example.com"},
		{"f@gmail.com", "p", ""},
	}
	for _, c := range cases {
		if _, err := NewEmailSender(c.from, c.password, c.to); err == nil {
			t.Errorf("Expected error for %+v", c)
		}
	}
}

func TestBuildEmailMessage(t *testing.T) {
	es, err := NewEmailSender("from@gmail.com", "app-password", "to@example.com")
	if err != nil {
		t.Fatal(err)
	}

	msg := string(es.BuildEmailMessage("Hello", "Body line"))
	for _, want := range []string{
		"From: from@gmail.com\r\n",
		"To: to@example.com\r\n",
		"Subject: Hello\r\n",
		"\r\n\r\nBody line",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

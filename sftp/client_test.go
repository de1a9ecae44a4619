package sftp

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/theranica/rxpipe/logger"
)

var testLog = logger.NewLogger("sftp test", "info", false)

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(Config{Log: testLog})
	if err == nil {
		t.Fatal("expected validation error for empty config")
	}
	c, err := NewClient(Config{Log: testLog, Host: "sftp.example.com", Username: "u", Password: "p"})
	if err != nil {
		t.Fatal(err)
	}
	if c == nil {
		t.Fatal("expected client")
	}
}

func TestConnectWithoutCredentials(t *testing.T) {
	c, err := NewClient(Config{Log: testLog, Host: "sftp.example.com", Username: "u"})
	if err != nil {
		t.Fatal(err)
	}
	err = c.Connect()
	if !errors.Is(err, ErrNoCredentials) {
		t.Fatal("expected ErrNoCredentials, got ", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	c, err := NewClient(Config{Log: testLog, Host: "sftp.example.com", Username: "u", Password: "p"})
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOperationsRequireConnection(t *testing.T) {
	c, _ := NewClient(Config{Log: testLog, Host: "sftp.example.com", Username: "u", Password: "p"})
	if _, err := c.ListEntries("/outbox"); err == nil {
		t.Fatal("expected error listing without a session")
	}
	if err := c.DownloadFile("/outbox/a.csv", "/tmp/a.csv"); err == nil {
		t.Fatal("expected error downloading without a session")
	}
}

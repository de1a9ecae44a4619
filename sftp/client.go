// Package sftp manages one authenticated session to the vendor's SFTP mailbox.
// Transfers stream in fixed-size chunks and are not resumable: a failure
// mid-download leaves a partial local file the caller must discard.
package sftp

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	sftplib "github.com/pkg/sftp"
	"github.com/theranica/rxpipe/constants"
	"github.com/theranica/rxpipe/helper"
	"github.com/theranica/rxpipe/logger"
	"golang.org/x/crypto/ssh"
)

// ErrNoCredentials denotes a connect attempt without a password or private key.
var ErrNoCredentials = errors.New("either a password or a private key must be supplied")

// RemoteFileEntry is one remote directory entry with its modification time.
type RemoteFileEntry struct {
	Name       string
	ModifiedAt time.Time
}

// Config holds the transport settings for one mailbox session.
type Config struct {
	Log            logger.Logger
	Host           string `errorTxt:"sftp host" mandatory:"yes"`
	Username       string `errorTxt:"sftp username" mandatory:"yes"`
	Password       string // password auth wins when both are set.
	PrivateKeyPath string // PEM file holding an RSA or Ed25519 key.
	Port           int
}

// Client is a single mailbox session. Not safe for concurrent use; the
// pipeline is synchronous by design.
type Client struct {
	log     logger.Logger
	cfg     Config
	sshConn *ssh.Client
	sftp    *sftplib.Client
}

// NewClient validates the config and returns an unconnected client.
func NewClient(cfg Config) (*Client, error) {
	if err := helper.ValidateStructIsPopulated(&cfg); err != nil {
		return nil, err
	}
	if cfg.Port == 0 {
		cfg.Port = constants.SftpPort
	}
	return &Client{log: cfg.Log, cfg: cfg}, nil
}

// Connect establishes the session. It fails with ErrNoCredentials when neither
// a password nor a key is configured, and wraps transport failures otherwise.
func (c *Client) Connect() error {
	auth, err := c.authMethod()
	if err != nil {
		return err
	}
	sshCfg := &ssh.ClientConfig{
		User:            c.cfg.Username,
		Auth:            []ssh.AuthMethod{auth},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         constants.SftpTimeoutSeconds * time.Second,
	}
	addr := fmt.Sprintf("%v:%v", c.cfg.Host, c.cfg.Port)
	c.log.Info("connecting to SFTP server ", addr)
	conn, err := ssh.Dial("tcp", addr, sshCfg)
	if err != nil {
		return errors.Wrapf(err, "failed to connect to sftp host %q", addr)
	}
	client, err := sftplib.NewClient(conn)
	if err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "failed to open sftp subsystem")
	}
	c.sshConn = conn
	c.sftp = client
	c.log.Info("connected to SFTP successfully")
	return nil
}

func (c *Client) authMethod() (ssh.AuthMethod, error) {
	if c.cfg.Password != "" {
		return ssh.Password(c.cfg.Password), nil
	}
	if c.cfg.PrivateKeyPath != "" {
		pem, err := os.ReadFile(c.cfg.PrivateKeyPath)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read private key %q", c.cfg.PrivateKeyPath)
		}
		// Accepts RSA and Ed25519 PEM blocks alike.
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse private key %q", c.cfg.PrivateKeyPath)
		}
		return ssh.PublicKeys(signer), nil
	}
	return nil, ErrNoCredentials
}

// ListEntries returns the entries of the remote directory with their
// modification times, in the order the server yields them.
func (c *Client) ListEntries(remotePath string) ([]RemoteFileEntry, error) {
	if c.sftp == nil {
		return nil, errors.New("sftp session is not connected")
	}
	infos, err := c.sftp.ReadDir(remotePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list remote path %q", remotePath)
	}
	entries := make([]RemoteFileEntry, 0, len(infos))
	for _, fi := range infos {
		if fi.IsDir() {
			continue
		}
		entries = append(entries, RemoteFileEntry{Name: fi.Name(), ModifiedAt: fi.ModTime()})
	}
	return entries, nil
}

// DownloadFile streams the remote file to localPath in fixed 64KiB chunks.
func (c *Client) DownloadFile(remotePath, localPath string) error {
	if c.sftp == nil {
		return errors.New("sftp session is not connected")
	}
	c.log.Info("downloading ", remotePath, " to ", localPath)
	src, err := c.sftp.Open(remotePath)
	if err != nil {
		return errors.Wrapf(err, "failed to open remote file %q", remotePath)
	}
	defer src.Close()
	dst, err := os.Create(localPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create local file %q", localPath)
	}
	defer dst.Close()
	buf := make([]byte, constants.TransferChunkBytes)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return errors.Wrapf(werr, "failed to write local file %q", localPath)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "failed while reading remote file %q", remotePath)
		}
	}
	c.log.Info("download complete: ", localPath)
	return nil
}

// Close releases the session. It is safe to call multiple times and on a
// client that never connected.
func (c *Client) Close() error {
	if c.sftp != nil {
		_ = c.sftp.Close()
		c.sftp = nil
	}
	if c.sshConn != nil {
		_ = c.sshConn.Close()
		c.sshConn = nil
		c.log.Info("SFTP connection closed")
	}
	return nil
}

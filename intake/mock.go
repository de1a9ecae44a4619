package intake

import (
	"context"

	"github.com/theranica/rxpipe/sftp"
)

// Hand-rolled fakes for orchestrator and filter tests.

type mockTransfer struct {
	entries      []sftp.RemoteFileEntry
	connectErr   error
	listErr      error
	downloadErrs map[string]error // keyed by remote file name
	downloads    []string
	closeCalls   int
}

func (m *mockTransfer) Connect() error { return m.connectErr }

func (m *mockTransfer) ListEntries(remotePath string) ([]sftp.RemoteFileEntry, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.entries, nil
}

func (m *mockTransfer) DownloadFile(remotePath, localPath string) error {
	m.downloads = append(m.downloads, remotePath)
	for name, err := range m.downloadErrs {
		if remotePath == name || pathBase(remotePath) == name {
			return err
		}
	}
	return nil
}

func (m *mockTransfer) Close() error {
	m.closeCalls++
	return nil
}

func pathBase(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[i+1:]
		}
	}
	return p
}

type mockStore struct {
	existing   map[string]bool // object name -> exists in destination
	existsErr  error
	uploadErrs map[string]error // keyed by object name
	uploads    []string
}

func (m *mockStore) Exists(ctx context.Context, bucket, object string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.existing[object], nil
}

func (m *mockStore) Download(ctx context.Context, bucket, object, localPath string) (string, error) {
	return localPath, nil
}

func (m *mockStore) Upload(ctx context.Context, bucket, localPath, object string) error {
	if err := m.uploadErrs[object]; err != nil {
		return err
	}
	m.uploads = append(m.uploads, object)
	return nil
}

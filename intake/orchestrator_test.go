package intake

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/theranica/rxpipe/constants"
	"github.com/theranica/rxpipe/sftp"
)

func entry(name string) sftp.RemoteFileEntry {
	return sftp.RemoteFileEntry{Name: name, ModifiedAt: time.Now()}
}

func runConfig(tr *mockTransfer, st *mockStore) *Config {
	return &Config{
		Log:        testLog,
		Transfer:   tr,
		Store:      st,
		Bucket:     "dest-bucket",
		RemotePath: "/outbox/",
	}
}

func TestRunNoFilesProcessed(t *testing.T) {
	tr := &mockTransfer{entries: []sftp.RemoteFileEntry{entry("unrelated.txt")}}
	st := &mockStore{existing: map[string]bool{}}
	status, report, err := Run(context.Background(), runConfig(tr, st))
	if err != nil {
		t.Fatal(err)
	}
	if status != constants.StatusNoFilesProcessed {
		t.Fatal("bad status: ", status)
	}
	if tr.closeCalls != 1 {
		t.Fatal("session must be closed exactly once, got ", tr.closeCalls)
	}
	if report.Matched != 0 {
		t.Fatal("bad matched count: ", report.Matched)
	}
}

func TestRunNoNewFiles(t *testing.T) {
	// The file passes the name filter but exists by the time of the re-check.
	st := &mockStore{existing: map[string]bool{}}
	tr := &mockTransfer{entries: []sftp.RemoteFileEntry{entry("ProCare_THERANICA_ITD_DATAFEED_2025-05-05.csv")}}
	cfg := runConfig(tr, st)
	// First probe (inside the filter) misses, second probe hits.
	probes := 0
	cfg.Store = &raceStore{mockStore: st, flipAfter: 1, probes: &probes}
	status, _, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if status != constants.StatusNoNewFiles {
		t.Fatal("bad status: ", status)
	}
	if tr.closeCalls != 1 {
		t.Fatal("session must be closed exactly once, got ", tr.closeCalls)
	}
}

// raceStore simulates another writer landing the object between the filter's
// embedded probe and the orchestrator's re-check.
type raceStore struct {
	*mockStore
	flipAfter int
	probes    *int
}

func (r *raceStore) Exists(ctx context.Context, bucket, object string) (bool, error) {
	*r.probes++
	if *r.probes > r.flipAfter {
		return true, nil
	}
	return false, nil
}

func TestRunDownloadsAndUploads(t *testing.T) {
	tr := &mockTransfer{entries: []sftp.RemoteFileEntry{
		entry("ProCare_THERANICA_ITD_DATAFEED_2025-05-05.csv"),
		entry("20250505- BI SUMMARY.xlsx"),
		entry("notes.txt"),
	}}
	st := &mockStore{existing: map[string]bool{}}
	status, report, err := Run(context.Background(), runConfig(tr, st))
	if err != nil {
		t.Fatal(err)
	}
	if status != constants.StatusOK {
		t.Fatal("bad status: ", status)
	}
	if report.Matched != 2 || report.New != 2 || report.Uploaded != 2 {
		t.Fatalf("bad report: %+v", report)
	}
	if len(tr.downloads) != 2 {
		t.Fatal("bad download count: ", tr.downloads)
	}
	// Remote paths join the configured directory without doubled slashes.
	if tr.downloads[0] != "/outbox/ProCare_THERANICA_ITD_DATAFEED_2025-05-05.csv" {
		t.Fatal("bad remote path: ", tr.downloads[0])
	}
	if len(st.uploads) != 2 {
		t.Fatal("bad upload count: ", st.uploads)
	}
	if tr.closeCalls != 1 {
		t.Fatal("session must be closed exactly once, got ", tr.closeCalls)
	}
}

func TestRunIsolatesPerFileFailures(t *testing.T) {
	tr := &mockTransfer{
		entries: []sftp.RemoteFileEntry{
			entry("ProCare_THERANICA_ITD_DATAFEED_2025-05-05.csv"),
			entry("ProCare_THERANICA_ITD_DATAFEED_2025-05-06.csv"),
		},
		downloadErrs: map[string]error{
			"ProCare_THERANICA_ITD_DATAFEED_2025-05-05.csv": errors.New("connection reset"),
		},
	}
	st := &mockStore{existing: map[string]bool{}}
	status, report, err := Run(context.Background(), runConfig(tr, st))
	if err != nil {
		t.Fatal(err)
	}
	if status != constants.StatusOK {
		t.Fatal("bad status: ", status)
	}
	if report.Uploaded != 1 {
		t.Fatal("bad uploaded count: ", report.Uploaded)
	}
	var failed, succeeded int
	for _, r := range report.Results {
		if r.Err != nil {
			failed++
		} else {
			succeeded++
		}
	}
	if failed != 1 || succeeded != 1 {
		t.Fatalf("bad per-file isolation: %+v", report.Results)
	}
}

func TestRunConnectFailureStillCloses(t *testing.T) {
	tr := &mockTransfer{connectErr: errors.New("auth rejected")}
	st := &mockStore{existing: map[string]bool{}}
	_, _, err := Run(context.Background(), runConfig(tr, st))
	if err == nil {
		t.Fatal("expected connect error to propagate")
	}
	if tr.closeCalls != 1 {
		t.Fatal("session release must still run, got ", tr.closeCalls)
	}
}

func TestRunValidatesConfig(t *testing.T) {
	cfg := runConfig(&mockTransfer{}, &mockStore{})
	cfg.Bucket = ""
	if _, _, err := Run(context.Background(), cfg); err == nil {
		t.Fatal("expected validation error for missing bucket")
	}
}

// Package intake decides which remote mailbox files are new and valid, and
// drives their transfer into durable storage.
package intake

import (
	"context"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/theranica/rxpipe/constants"
	"github.com/theranica/rxpipe/gcs"
	"github.com/theranica/rxpipe/logger"
)

var (
	reProcareName   = regexp.MustCompile(constants.FeedTokenProcare + `_(\d{4})-(\d{2})-(\d{2})`)
	reBiSummaryName = regexp.MustCompile(`^(\d{8})- ` + constants.FeedTokenBiSummary)
)

// Filter is the acceptance decision for one candidate file: filename pattern,
// embedded calendar-date validity, and a destination-existence duplicate guard.
type Filter struct {
	log    logger.Logger
	store  gcs.Exister
	bucket string
}

// NewFilter returns a Filter probing the given destination bucket.
func NewFilter(log logger.Logger, store gcs.Exister, bucket string) (*Filter, error) {
	if store == nil || bucket == "" {
		return nil, errors.New("filter requires an object store and a destination bucket")
	}
	return &Filter{log: log, store: store, bucket: bucket}, nil
}

// Accept decides MATCH (true) or SKIP (false) for a remote file. A malformed
// embedded date is a skip, never an error; the only error source is the
// destination-existence probe.
func (f *Filter) Accept(ctx context.Context, filename string, modified time.Time) (bool, error) {
	exists, err := f.store.Exists(ctx, f.bucket, path.Base(filename))
	if err != nil {
		return false, errors.Wrap(err, "failed destination existence probe")
	}
	if exists {
		f.log.Info("skip: file already exists in the bucket: ", filename)
		return false, nil
	}

	upper := strings.ToUpper(filename)

	if m := reProcareName.FindStringSubmatch(upper); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if !validCalendarDate(year, month, day) {
			f.log.Info("skip: invalid date in rx feed filename: ", filename)
			return false, nil
		}
		f.log.Info("match: valid rx feed file: ", filename)
		return true, nil
	}

	if strings.Contains(upper, constants.FeedTokenBiSummary) {
		m := reBiSummaryName.FindStringSubmatch(upper)
		if m == nil {
			f.log.Info("skip: BI summary filename doesn't match expected format: ", filename)
			return false, nil
		}
		if _, err := time.Parse(constants.CompactDateFormat, m[1]); err != nil {
			f.log.Info("skip: invalid date in BI summary filename: ", filename)
			return false, nil
		}
		f.log.Info("match: valid BI summary file: ", filename)
		return true, nil
	}

	f.log.Info("skip: unrecognized feed file: ", filename)
	return false, nil
}

// validCalendarDate reports whether y-m-d is a real calendar date, e.g.
// 2025-13-40 is not even though it matches the filename pattern.
func validCalendarDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && t.Month() == time.Month(month) && t.Day() == day
}

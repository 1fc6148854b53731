package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := NewRecorder()

	r.LedgerProcessed(100, time.Millisecond)
	r.LedgerProcessed(101, time.Millisecond)
	r.EventsRouted("vote_cast", 3)
	r.RecordsWritten("vote_cast", 2)
	r.StoreFailed("proposal_updated")

	require.Equal(t, 2.0, testutil.ToFloat64(r.ledgers))
	require.Equal(t, 101.0, testutil.ToFloat64(r.lastLedger))
	require.Equal(t, 3.0, testutil.ToFloat64(r.eventsRouted.WithLabelValues("vote_cast")))
	require.Equal(t, 2.0, testutil.ToFloat64(r.recordsWritten.WithLabelValues("vote_cast")))
	require.Equal(t, 1.0, testutil.ToFloat64(r.storeFailures.WithLabelValues("proposal_updated")))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.LedgerProcessed(1, time.Second)
	r.EventsRouted("vote_cast", 1)
	r.RecordsWritten("vote_cast", 1)
	r.StoreFailed("vote_cast")
}

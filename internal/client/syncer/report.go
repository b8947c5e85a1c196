package syncer

import "fmt"

// KindReport counts what a cycle did to one collection.
type KindReport struct {
	Pushed       int
	Purged       int
	Materialized int
	Updated      int
	// Moved counts live rows re-homed to the top level after their folder
	// was deleted elsewhere.
	Moved        int
	Skipped      int
	Failed       int
}

func (k KindReport) String() string {
	return fmt.Sprintf("pushed %d, pulled %d new, %d updated, moved %d, purged %d, skipped %d, failed %d",
		k.Pushed, k.Materialized, k.Updated, k.Moved, k.Purged, k.Skipped, k.Failed)
}

type Report struct {
	Folders   KindReport
	Documents KindReport
}

// Failed is the number of records that will be retried next cycle.
func (r *Report) Failed() int {
	return r.Folders.Failed + r.Documents.Failed
}

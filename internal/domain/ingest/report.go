// Package ingest models the per-record outcome of a catalog load.
package ingest

// Result is the outcome for a single product record.
type Result struct {
	ProductID int64
	Err       error
}

// OK marks a record as ingested.
func OK(id int64) Result {
	return Result{ProductID: id}
}

// Failed marks a record as rejected with the cause.
func Failed(id int64, err error) Result {
	return Result{ProductID: id, Err: err}
}

// Report aggregates the outcome of one ingestion run.
type Report struct {
	Total     int
	Succeeded int
	Failed    int
	Results   []Result
}

// Build assembles a report from individual results.
func Build(results []Result) Report {
	r := Report{Total: len(results), Results: results}
	for _, res := range results {
		if res.Err != nil {
			r.Failed++
		} else {
			r.Succeeded++
		}
	}
	return r
}

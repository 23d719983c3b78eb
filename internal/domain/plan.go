package domain

import "time"

// FetchPlan is the outcome of diffing a listing against history.
type FetchPlan struct {
	Source     Source
	Items      []RemoteFile
	Listed     int
	Known      int
	Duplicates int
}

// StagedGroup is one "<date> <source>" directory in the staging area.
type StagedGroup struct {
	Dir    string
	Date   string
	Source string
	Files  []string
}

// CycleReport summarizes one pass of the poll loop over a single source.
type CycleReport struct {
	ID        string
	Source    Source
	Started   time.Time
	Finished  time.Time
	State     string
	Listed    int
	New       int
	Fetched   int
	Failed    int
	Uploaded  bool
	Committed int
	Err       error
}

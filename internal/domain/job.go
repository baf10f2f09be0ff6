package domain

import "time"

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusSubmitted JobStatus = "submitted"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// GenerationJob tracks the single in-flight video generation of a session.
// It is only mutated from poll responses and discarded once resolved.
type GenerationJob struct {
	ID           string
	Handle       string
	Done         bool
	ResultURI    string
	ErrorMessage string
	Polls        int
	Status       JobStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Resolve records a poll response on the job.
func (j *GenerationJob) Resolve(done bool, resultURI, errMsg string) {
	j.Done = done
	j.ResultURI = resultURI
	j.ErrorMessage = errMsg
	j.UpdatedAt = time.Now()
	switch {
	case !done:
		j.Status = JobStatusRunning
	case errMsg != "" || resultURI == "":
		j.Status = JobStatusFailed
	default:
		j.Status = JobStatusSucceeded
	}
}

package artifact

import (
	"time"
)

// ManifestFile is the name of the manifest inside each run directory.
const ManifestFile = "manifest.json"

// RunStatus indicates the status of a run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunManifest records a run and the artifacts it produced.
type RunManifest struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    RunStatus `json:"status"`
	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt,omitempty"`
	Error     string    `json:"error,omitempty"`
	Artifacts []Info    `json:"artifacts"`
}

// Info contains metadata about a stored artifact.
type Info struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	Compressed bool      `json:"compressed"`
	Checksum   string    `json:"checksum,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	Type       string    `json:"type"`
}

// Duration returns how long the run took, or has taken so far.
func (r *RunManifest) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// IsActive returns true if the run is still in progress.
func (r *RunManifest) IsActive() bool {
	return r.Status == RunStatusRunning
}

// Artifact returns the record for name.
func (r *RunManifest) Artifact(name string) (Info, bool) {
	for _, a := range r.Artifacts {
		if a.Name == name {
			return a, true
		}
	}
	return Info{}, false
}

func (r *RunManifest) upsert(info Info) {
	for i, a := range r.Artifacts {
		if a.Name == info.Name {
			r.Artifacts[i] = info
			return
		}
	}
	r.Artifacts = append(r.Artifacts, info)
}

func (r *RunManifest) remove(name string) {
	for i, a := range r.Artifacts {
		if a.Name == name {
			r.Artifacts = append(r.Artifacts[:i], r.Artifacts[i+1:]...)
			return
		}
	}
}

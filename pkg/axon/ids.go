package axon

import "github.com/google/uuid"

// NewDeploymentID returns a fresh random identifier suitable for
// labeling one Framework instance in logs and metrics across a process
// that runs more than one (spec.md's ambient stack: every Framework
// needs a stable name to tag its own diagnostic output with). Adapted
// from the teacher's pkg/core/request_id.go GenerateRequestID, which
// used the same uuid.New().String() call to stamp outbound HTTP
// requests; here the identifier stamps a Framework instance instead of
// a request.
func NewDeploymentID() string {
	return uuid.New().String()
}

// NewDebugID returns a fresh random identifier for one ad-hoc debugging
// session (e.g. a demo run), distinct from NewDeploymentID so logs can
// tell "which Framework" apart from "which run of the demo against it".
func NewDebugID() string {
	return uuid.New().String()
}

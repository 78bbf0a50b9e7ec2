package roster

import (
	"context"
	"io"
	"time"
)

// Result is the outcome of a harvest: the deduplicated members in the order
// they were first seen plus collection-level metadata.
type Result struct {
	ID           string    `json:"id,omitempty"`
	GroupName    string    `json:"groupName"`
	SourceURL    string    `json:"sourceUrl,omitempty"`
	TotalMembers int       `json:"totalMembers"`
	Members      []Member  `json:"members"`
	ExtractedAt  time.Time `json:"extractedAt"`

	// Stopped is set when the harvest was interrupted and Members is
	// partial.
	Stopped bool `json:"stopped"`

	// Fingerprint identifies the membership independent of order.
	// Assigned by the store.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Empty reports whether the harvest succeeded without finding anyone.
func (r *Result) Empty() bool {
	return r.TotalMembers == 0
}

// Validate returns an error if the result contains invalid fields.
func (r *Result) Validate() error {
	if r.ExtractedAt.IsZero() {
		return Errorf(EINVALID, "result extraction time required")
	}
	if r.TotalMembers != len(r.Members) {
		return Errorf(EINVALID, "result total %d does not match %d members", r.TotalMembers, len(r.Members))
	}
	for i := range r.Members {
		if r.Members[i].Key == "" {
			return Errorf(EINVALID, "member %d identity key required", i)
		}
	}
	return nil
}

// ResultService represents a service for managing stored harvest results.
type ResultService interface {
	// CreateResult stores a result and assigns its ID and fingerprint.
	CreateResult(ctx context.Context, result *Result) error

	// FindResultByID retrieves a result with its members.
	// Returns ENOTFOUND if the result does not exist.
	FindResultByID(ctx context.Context, id string) (*Result, error)

	// FindResults retrieves results matching the filter, without members.
	FindResults(ctx context.Context, filter ResultFilter) ([]*Result, error)

	// DeleteResult permanently removes a result and its members.
	// Returns ENOTFOUND if the result does not exist.
	DeleteResult(ctx context.Context, id string) error
}

// ResultFilter represents a filter for FindResults.
type ResultFilter struct {
	ID        *string `json:"id"`
	GroupName *string `json:"groupName"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// Exporter writes a result in a specific file format.
type Exporter interface {
	Export(ctx context.Context, result *Result, w io.Writer) error

	// Extension returns the file extension without the dot (e.g., "csv").
	Extension() string
}

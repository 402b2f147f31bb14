package dataset

import "fmt"

// NoticeKind classifies a non-fatal condition surfaced to the user.
type NoticeKind string

const (
	// NoticeUnresolvedRole means no column could be found for a role; the feature is unavailable.
	NoticeUnresolvedRole NoticeKind = "unresolved_role"
	// NoticeEmptyResult means a filter or coordinate cleaning left zero rows.
	NoticeEmptyResult NoticeKind = "empty_result"
	// NoticeFeatureUnavailable means a capability the feature needs is missing.
	NoticeFeatureUnavailable NoticeKind = "feature_unavailable"
)

// Notice is an informational message. It never stops the pipeline.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Subject string     `json:"subject,omitempty"`
	Message string     `json:"message"`
}

func (n Notice) String() string {
	if n.Subject != "" {
		return fmt.Sprintf("%s: %s", n.Subject, n.Message)
	}
	return n.Message
}

// Notices is an ordered list of notices.
type Notices []Notice

// Has reports whether a notice of kind k about subject is present. An empty subject matches any.
func (ns Notices) Has(k NoticeKind, subject string) bool {
	for _, n := range ns {
		if n.Kind == k && (subject == "" || n.Subject == subject) {
			return true
		}
	}
	return false
}

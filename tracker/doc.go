// Package tracker defines the vendor-neutral issue tracker contract.
//
// The contract is a normalized issue model (Issue), a four-value status
// enum (Status), a sparse update descriptor (UpdateOptions), a search
// filter with AND semantics and a result cap (Filter), and the Client
// interface covering the CRUD surface. Provider packages (jira, github,
// gitlab) implement Client and register themselves so callers can open
// a tracker by name:
//
//	import (
//	    "github.com/randalmurphal/trackwork/tracker"
//	    _ "github.com/randalmurphal/trackwork/jira"
//	)
//
//	client, err := tracker.Open(ctx, "jira", tracker.OpenOptions{})
//	if err != nil {
//	    return err
//	}
//	issue, err := client.GetIssue(ctx, "PROJ-42")
//
// Missing issues surface as tracker.ErrIssueNotFound from every
// provider, so callers can handle the condition without knowing which
// vendor is behind the client:
//
//	if errors.Is(err, tracker.ErrIssueNotFound) {
//	    // issue doesn't exist
//	}
//
// Vendor-specific failures (for example an unavailable Jira workflow
// transition) are defined by the provider packages and are not part of
// this contract.
package tracker

package jira

import (
	"strings"

	"github.com/randalmurphal/trackwork/tracker"
)

// cancelledNames are Jira status names that mean an issue was
// abandoned rather than finished. Jira puts these in the same "done"
// category as genuinely completed work, so they need a name check.
var cancelledNames = map[string]bool{
	"cancelled": true,
	"canceled":  true,
	"won't do":  true,
	"wont do":   true,
	"rejected":  true,
	"discarded": true,
}

// NormalizeStatus maps a Jira workflow status onto the shared enum.
// The status category drives the mapping; unknown or missing statuses
// fall back to not started.
func NormalizeStatus(status *Status) tracker.Status {
	if status == nil {
		return tracker.StatusNotStarted
	}

	name := strings.ToLower(strings.TrimSpace(status.Name))
	if cancelledNames[name] {
		return tracker.StatusCancelled
	}

	if status.Category != nil {
		switch status.Category.Key {
		case "new":
			return tracker.StatusNotStarted
		case "indeterminate":
			return tracker.StatusInProgress
		case "done":
			return tracker.StatusComplete
		}
	}

	// Server instances sometimes omit the category; fall back to
	// well-known status names.
	switch name {
	case "to do", "todo", "open", "backlog", "new":
		return tracker.StatusNotStarted
	case "in progress", "in review", "in development":
		return tracker.StatusInProgress
	case "done", "closed", "resolved", "complete", "completed":
		return tracker.StatusComplete
	}

	return tracker.StatusNotStarted
}

// transitionCandidates lists transition names commonly leading to each
// normalized status, in preference order. Workflow transitions are
// named per project, so these are best-effort before the category
// fallback in FindTransition.
var transitionCandidates = map[tracker.Status][]string{
	tracker.StatusNotStarted: {"To Do", "Open", "Backlog", "Reopen", "Stop Progress"},
	tracker.StatusInProgress: {"In Progress", "Start Progress", "Start Work", "Start Development"},
	tracker.StatusComplete:   {"Done", "Close", "Close Issue", "Resolve", "Resolve Issue", "Complete"},
	tracker.StatusCancelled:  {"Cancel", "Cancelled", "Canceled", "Won't Do", "Reject"},
}

// FindTransition picks the transition that moves an issue to the
// target status. Name matches win; otherwise any transition whose
// destination normalizes to the target is accepted.
func FindTransition(transitions []Transition, target tracker.Status) (Transition, bool) {
	for _, candidate := range transitionCandidates[target] {
		for _, t := range transitions {
			if strings.EqualFold(t.Name, candidate) {
				return t, true
			}
		}
	}

	for _, t := range transitions {
		if t.To != nil && NormalizeStatus(t.To) == target {
			return t, true
		}
	}

	return Transition{}, false
}

// transitionNames returns the names of the given transitions, for
// error reporting.
func transitionNames(transitions []Transition) []string {
	names := make([]string, 0, len(transitions))
	for _, t := range transitions {
		names = append(names, t.Name)
	}
	return names
}

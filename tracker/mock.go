package tracker

import "context"

// MockClient is a mock implementation of Client for testing.
type MockClient struct {
	GetIssueFunc     func(ctx context.Context, id string) (*Issue, error)
	SearchIssuesFunc func(ctx context.Context, filter Filter) IssueIterator
	CreateIssueFunc  func(ctx context.Context, opts CreateOptions) (*Issue, error)
	UpdateIssueFunc  func(ctx context.Context, id string, update UpdateOptions) (*Issue, error)
	DeleteIssueFunc  func(ctx context.Context, id string) error
}

// GetIssue implements Client.
func (m *MockClient) GetIssue(ctx context.Context, id string) (*Issue, error) {
	if m.GetIssueFunc != nil {
		return m.GetIssueFunc(ctx, id)
	}
	return &Issue{ID: id, Status: StatusNotStarted}, nil
}

// SearchIssues implements Client.
func (m *MockClient) SearchIssues(ctx context.Context, filter Filter) IssueIterator {
	if m.SearchIssuesFunc != nil {
		return m.SearchIssuesFunc(ctx, filter)
	}
	return SliceIterator(nil)
}

// CreateIssue implements Client.
func (m *MockClient) CreateIssue(ctx context.Context, opts CreateOptions) (*Issue, error) {
	if m.CreateIssueFunc != nil {
		return m.CreateIssueFunc(ctx, opts)
	}
	return &Issue{ID: "MOCK-1", Title: opts.Title, Status: StatusNotStarted}, nil
}

// UpdateIssue implements Client.
func (m *MockClient) UpdateIssue(ctx context.Context, id string, update UpdateOptions) (*Issue, error) {
	if m.UpdateIssueFunc != nil {
		return m.UpdateIssueFunc(ctx, id, update)
	}
	return &Issue{ID: id}, nil
}

// DeleteIssue implements Client.
func (m *MockClient) DeleteIssue(ctx context.Context, id string) error {
	if m.DeleteIssueFunc != nil {
		return m.DeleteIssueFunc(ctx, id)
	}
	return nil
}

// SliceIterator adapts a fixed slice of issues to IssueIterator.
// Useful for mocks and tests.
func SliceIterator(issues []Issue) IssueIterator {
	return &sliceIterator{issues: issues}
}

type sliceIterator struct {
	issues []Issue
	pos    int
}

func (s *sliceIterator) Next(_ context.Context) (Issue, bool, error) {
	if s.pos >= len(s.issues) {
		return Issue{}, false, nil
	}
	issue := s.issues[s.pos]
	s.pos++
	return issue, true, nil
}

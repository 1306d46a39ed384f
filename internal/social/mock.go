package social

import "context"

// MockPlatform is a test double for Platform.
type MockPlatform struct {
	PlatformName string
	PostFunc     func(ctx context.Context, text string) (string, error)
	ReplyFunc    func(ctx context.Context, postID, text string) (string, error)
	LikeFunc     func(ctx context.Context, postID string) error
	TimelineFunc func(ctx context.Context, count int) ([]Post, error)
	MeFunc       func(ctx context.Context) (*User, error)
	RepliesFunc  func(ctx context.Context, postID string, count int) ([]Post, error)
}

func (m *MockPlatform) Name() string { return m.PlatformName }

func (m *MockPlatform) Post(ctx context.Context, text string) (string, error) {
	if m.PostFunc != nil {
		return m.PostFunc(ctx, text)
	}
	return "mock-post-1", nil
}

func (m *MockPlatform) Reply(ctx context.Context, postID, text string) (string, error) {
	if m.ReplyFunc != nil {
		return m.ReplyFunc(ctx, postID, text)
	}
	return "mock-reply-1", nil
}

func (m *MockPlatform) Like(ctx context.Context, postID string) error {
	if m.LikeFunc != nil {
		return m.LikeFunc(ctx, postID)
	}
	return nil
}

func (m *MockPlatform) Timeline(ctx context.Context, count int) ([]Post, error) {
	if m.TimelineFunc != nil {
		return m.TimelineFunc(ctx, count)
	}
	return nil, nil
}

func (m *MockPlatform) Me(ctx context.Context) (*User, error) {
	if m.MeFunc != nil {
		return m.MeFunc(ctx)
	}
	return &User{ID: "mock-user", Username: "mock"}, nil
}

func (m *MockPlatform) Replies(ctx context.Context, postID string, count int) ([]Post, error) {
	if m.RepliesFunc != nil {
		return m.RepliesFunc(ctx, postID, count)
	}
	return nil, nil
}

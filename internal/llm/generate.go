package llm

import (
	"context"
	"strings"
)

// GenerateText runs a single-prompt completion and returns the trimmed text.
func GenerateText(ctx context.Context, c Client, prompt, system string) (string, error) {
	resp, err := c.Complete(ctx, CompletionRequest{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Content), nil
}

package tokens

import (
	"context"
	"fmt"
	"log"

	"github.com/10Ala10/X-Linkedin-bookmarks-exporter-extension/internal/core/platform"
)

// ActionGetAuthTokens is the only action understood by Service.Handle.
const ActionGetAuthTokens = "getAuthTokens"

// Message is a request from a UI collaborator.
type Message struct {
	Action   string `json:"action"`
	Platform string `json:"platform,omitempty"`
}

// Response answers a Message.
type Response struct {
	Success bool        `json:"success"`
	Tokens  *Credential `json:"tokens,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Service answers "give me the current tokens for platform P".
type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// Handle dispatches a Message. An empty platform means twitter.
func (s *Service) Handle(ctx context.Context, m Message) Response {
	if m.Action != ActionGetAuthTokens {
		return Response{Error: fmt.Sprintf("unknown action %q", m.Action)}
	}
	name := m.Platform
	if name == "" {
		name = string(platform.Twitter)
	}
	p, err := platform.Parse(name)
	if err != nil {
		return Response{Error: err.Error()}
	}
	return s.GetAuthTokens(ctx, p)
}

// GetAuthTokens checks the memory cache first and falls back to durable storage.
func (s *Service) GetAuthTokens(ctx context.Context, p platform.Platform) Response {
	cred, err := s.Tokens(ctx, p)
	if err != nil {
		return Response{Error: err.Error()}
	}
	return Response{Success: true, Tokens: &cred}
}

// Tokens is GetAuthTokens for Go callers. It returns an error wrapping
// ErrNoTokens when nothing complete is available.
func (s *Service) Tokens(ctx context.Context, p platform.Platform) (Credential, error) {
	if cred, ok := s.store.Lookup(p); ok {
		log.Printf("Returning %s tokens from memory", p)
		return cred, nil
	}

	found, err := s.store.Load(ctx)
	if err != nil {
		log.Printf("Failed to load tokens from storage: %v", err)
	}
	if found {
		if cred, ok := s.store.Lookup(p); ok {
			log.Printf("Returning %s tokens from storage", p)
			return cred, nil
		}
	}

	log.Printf("No %s tokens available", p)
	return Credential{}, fmt.Errorf("%w for %s", ErrNoTokens, p)
}

// Remediation lists the steps a user takes to get tokens captured.
func Remediation(p platform.Platform) []string {
	if p == platform.LinkedIn {
		return []string{
			"Make sure you're logged in to LinkedIn",
			"Open My items > Saved posts (https://www.linkedin.com/my-items/saved-posts/)",
			"Scroll a little so the page issues a few API requests",
			"Run the fetch again",
		}
	}
	return []string{
		"Make sure you're logged in to Twitter/X",
		"Navigate to your bookmarks page (https://x.com/i/bookmarks)",
		"Scroll down a bit to load more content",
		"Try clicking on a few items or refreshing the page",
		"Run the fetch again",
	}
}

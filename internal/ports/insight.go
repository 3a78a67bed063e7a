package ports

import "context"

// Contract for an external text generator producing market insights from a prompt.
type InsightGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Optional cache of generated narratives keyed by prompt digest.
type InsightCache interface {
	Get(ctx context.Context, digest string) (string, bool, error)
	Put(ctx context.Context, digest string, narrative string) error
}

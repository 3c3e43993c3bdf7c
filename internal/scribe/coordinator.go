package scribe

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alkime/scribe/internal/formatting"
)

// formatClaim is the right to format one section, taken while the section's
// IsFormatting flag is held.
type formatClaim struct {
	label Label
	text  string
	gen   uint64
}

// sectionClaimer owns the section buffers the coordinator formats.
type sectionClaimer interface {
	claimFormat(label Label, gen uint64) (formatClaim, error)
	// releaseFormat clears the claim and, when err is nil, replaces the
	// section text. It returns ErrContextReset if the buffers were replaced
	// while the format was in flight.
	releaseFormat(claim formatClaim, formatted string, err error) error
}

// FormatSummary reports a FormatAll pass.
type FormatSummary struct {
	// Attempted counts sections sent to the formatter.
	Attempted int
	// Formatted counts sections whose text was replaced.
	Formatted int
	Failed    map[Label]error
	// Skipped lists sections that could not be claimed, e.g. because they
	// became the recording target.
	Skipped []Label
}

// Coordinator runs section formatting. Each section has at most one
// in-flight request and FormatAll never runs requests concurrently.
type Coordinator struct {
	formatter formatting.Formatter
	sections  sectionClaimer
	logger    *slog.Logger
}

func newCoordinator(formatter formatting.Formatter, sections sectionClaimer, logger *slog.Logger) *Coordinator {
	return &Coordinator{formatter: formatter, sections: sections, logger: logger}
}

// FormatOne formats a single section. On failure the section text is left
// untouched.
func (c *Coordinator) FormatOne(ctx context.Context, label Label, gen uint64) (string, error) {
	claim, err := c.sections.claimFormat(label, gen)
	if err != nil {
		return "", err
	}

	return c.run(ctx, claim)
}

func (c *Coordinator) run(ctx context.Context, claim formatClaim) (string, error) {
	formatted, err := c.formatter.Format(ctx, string(claim.label), claim.text)
	if err != nil {
		c.logger.Warn("failed to format section", "section", claim.label, "error", err)
	}

	if relErr := c.sections.releaseFormat(claim, formatted, err); relErr != nil {
		return "", relErr
	}
	if err != nil {
		return "", err
	}

	return formatted, nil
}

// FormatAll formats labels one after another. A failing section does not
// stop the pass; a context reset does.
func (c *Coordinator) FormatAll(ctx context.Context, labels []Label, gen uint64) (FormatSummary, error) {
	summary := FormatSummary{Failed: map[Label]error{}}

	for _, label := range labels {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		claim, err := c.sections.claimFormat(label, gen)
		switch {
		case errors.Is(err, ErrContextReset):
			return summary, err
		case err != nil:
			c.logger.Debug("skipping section", "section", label, "reason", err)
			summary.Skipped = append(summary.Skipped, label)
			continue
		}

		summary.Attempted++
		if _, err := c.run(ctx, claim); err != nil {
			if errors.Is(err, ErrContextReset) {
				return summary, err
			}
			summary.Failed[label] = err
			continue
		}
		summary.Formatted++
	}

	return summary, nil
}

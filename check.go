package learnedgeek

import (
	"errors"

	"github.com/rs/zerolog"
)

// Problem is one issue found by CheckContent.
type Problem struct {
	Slug   string
	Reason string
}

// CheckContent validates the registry and confirms every valid post has a
// body. Problems are returned in registry order for skipped entries, then
// newest first for missing bodies. The error is non-nil only when the
// content could not be inspected at all.
func CheckContent(store PostStore, logger zerolog.Logger) ([]Problem, error) {
	entries, err := store.LoadRegistry()
	if err != nil {
		return nil, err
	}
	snap := NewSnapshot(entries, logger)

	var problems []Problem
	for _, s := range snap.skipped {
		problems = append(problems, Problem{Slug: s.Slug, Reason: s.Reason})
	}
	for _, p := range snap.byDate {
		if _, err := store.LoadBody(p.Slug); err != nil {
			if !errors.Is(err, ErrBodyNotFound) {
				return problems, err
			}
			problems = append(problems, Problem{Slug: p.Slug, Reason: "missing body"})
		}
	}
	return problems, nil
}

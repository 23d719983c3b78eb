package app

import (
	"dcimsync/internal/domain"
	"dcimsync/internal/logging"
)

// Planner decides which listed files still need to be fetched.
type Planner struct {
	Logger logging.Logger
}

// Plan computes listed − history by filename. Names listed more than once are
// planned once, keeping the first occurrence.
func (p Planner) Plan(src domain.Source, listed []domain.RemoteFile, history []string) domain.FetchPlan {
	known := make(map[string]struct{}, len(history))
	for _, name := range history {
		known[name] = struct{}{}
	}

	plan := domain.FetchPlan{Source: src, Listed: len(listed)}
	seen := make(map[string]struct{}, len(listed))
	for _, file := range listed {
		key := file.Key()
		if _, dup := seen[key]; dup {
			plan.Duplicates++
			continue
		}
		seen[key] = struct{}{}

		if _, ok := known[key]; ok {
			plan.Known++
			continue
		}
		plan.Items = append(plan.Items, file)
	}

	p.Logger.Infof("Planned %d new of %d listed files (%d already downloaded, %d duplicates)",
		len(plan.Items), plan.Listed, plan.Known, plan.Duplicates)
	return plan
}

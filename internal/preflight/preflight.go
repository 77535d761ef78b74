package preflight

import (
	"context"
	"fmt"

	"screendoc/internal/config"
	"screendoc/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))
	results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	results = append(results, CheckDiskSpace("Staging disk space", cfg.Paths.StagingDir))

	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		result := Result{Name: status.Name, Passed: status.Available, Detail: status.Detail}
		if status.Available {
			result.Detail = status.Command
		} else if status.Optional {
			// Missing optional tools degrade features rather than block runs.
			result.Passed = true
			result.Detail = fmt.Sprintf("%s (feature disabled)", status.Detail)
		}
		results = append(results, result)
	}

	results = append(results, CheckNarrationAPI(ctx, cfg.Narrative))

	return results
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/thep200/star-neighbours/cfg"
	githubapi "github.com/thep200/star-neighbours/internal/github_api"
	"github.com/thep200/star-neighbours/internal/neighbour"
	"github.com/thep200/star-neighbours/pkg/log"
)

func main() {
	target := flag.String("repo", "", "Target repository (owner/name)")
	limit := flag.Int("limit", 20, "Max neighbours to print")
	flag.Parse()

	parts := strings.SplitN(*target, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		fmt.Println("Please specify a target repository: -repo=owner/name")
		os.Exit(1)
	}

	ctx := context.Background()
	loader, _ := cfg.NewViperLoader()
	config, err := loader.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, _ := log.NewCslLogger()

	caller, _ := githubapi.NewCaller(logger, config)
	finder, err := neighbour.NewFinder(logger, config, caller)
	if err != nil {
		logger.Error(ctx, "Failed to create finder: %v", err)
		os.Exit(1)
	}

	logger.Info(ctx, "Starting star neighbour discovery for %s", *target)
	result, err := finder.Discover(ctx, neighbour.RepoRef{Owner: parts[0], Name: parts[1]})
	if err != nil {
		logger.Error(ctx, "Discovery failed: %v", err)
		os.Exit(1)
	}

	// In kết quả đã xếp hạng
	fmt.Printf("Neighbours of %s (degraded=%v, %d stargazer fetch failed):\n",
		*target, result.Degraded, len(result.FailedStargazers))
	for i, edge := range result.Neighbours {
		if i >= *limit {
			fmt.Printf("... and %d more\n", len(result.Neighbours)-*limit)
			break
		}
		fmt.Printf("%3d. %-60s %d shared stargazers\n", i+1, edge.Repo.String(), len(edge.Stargazers))
	}
}

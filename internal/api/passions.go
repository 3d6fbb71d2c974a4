package api

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/sebakara/early-passion-detection/internal/types"
)

// PassionDomains fetches the scored passion domains for a child.
func (c *Client) PassionDomains(ctx context.Context, childID int) ([]types.PassionDomain, error) {
	var domains []types.PassionDomain
	if err := c.getJSON(ctx, fmt.Sprintf("/passions/domains/%d", childID), &domains); err != nil {
		return nil, err
	}
	return domains, nil
}

// PassionInsights fetches the narrative insights for a child.
func (c *Client) PassionInsights(ctx context.Context, childID int) ([]types.PassionInsight, error) {
	var insights []types.PassionInsight
	if err := c.getJSON(ctx, fmt.Sprintf("/passions/insights/%d", childID), &insights); err != nil {
		return nil, err
	}
	return insights, nil
}

// PassionProfile is the combined read-only view of a child's passions.
type PassionProfile struct {
	Domains  []types.PassionDomain
	Insights []types.PassionInsight
}

// PassionProfileFor fetches domains and insights concurrently. Both calls
// are independent reads, so the first failure cancels the other.
func (c *Client) PassionProfileFor(ctx context.Context, childID int) (*PassionProfile, error) {
	var profile PassionProfile

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		domains, err := c.PassionDomains(gctx, childID)
		if err != nil {
			return err
		}
		profile.Domains = domains
		return nil
	})
	g.Go(func() error {
		insights, err := c.PassionInsights(gctx, childID)
		if err != nil {
			return err
		}
		profile.Insights = insights
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &profile, nil
}

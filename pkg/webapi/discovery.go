package webapi

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Discovery endpoints and the link each listed server exposes to its
// children.
const (
	AssetServersPath = "/assetservers"
	DataServersPath  = "/dataservers"

	LinkDatabases = "Databases"
	LinkPoints    = "Points"
)

// ListAllAssetServers returns the raw asset server collection.
func (c *Client) ListAllAssetServers(ctx context.Context) (any, error) {
	return c.QueryByCustomURL(ctx, AssetServersPath)
}

// ListAllDataServers returns the raw data server collection.
func (c *Client) ListAllDataServers(ctx context.Context) (any, error) {
	return c.QueryByCustomURL(ctx, DataServersPath)
}

// ListAllAssetDatabases lists the databases of every asset server, one entry
// per server in listing order.
func (c *Client) ListAllAssetDatabases(ctx context.Context) ([]any, error) {
	return c.fanOut(ctx, AssetServersPath, LinkDatabases)
}

// ListAllPoints lists the points of every data server, one entry per server
// in listing order.
func (c *Client) ListAllPoints(ctx context.Context) ([]any, error) {
	return c.fanOut(ctx, DataServersPath, LinkPoints)
}

// fanOut fetches the parent collection, then fetches every item's link
// concurrently. The first failure cancels the remaining fetches and is
// returned; no partial list is produced.
func (c *Client) fanOut(ctx context.Context, parentPath, link string) ([]any, error) {
	parent, err := c.QueryByCustomURL(ctx, parentPath)
	if err != nil {
		return nil, err
	}

	links, err := childLinks(parent, link)
	if err != nil {
		return nil, newDecodeError("fanOut", fmt.Errorf("%s: %w", parentPath, err))
	}

	c.logger.Debug("fanning out discovery", "parent", parentPath, "link", link, "children", len(links))

	results := make([]any, len(links))
	g, gctx := errgroup.WithContext(ctx)
	for i, childURL := range links {
		i, childURL := i, childURL
		g.Go(func() error {
			result, err := c.QueryByCustomURL(gctx, childURL)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// childLinks extracts Items[*].Links[link] from a decoded collection.
func childLinks(collection any, link string) ([]string, error) {
	obj, ok := collection.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("collection is %T, want object", collection)
	}

	rawItems, ok := obj["Items"]
	if !ok || rawItems == nil {
		return []string{}, nil
	}
	items, ok := rawItems.([]any)
	if !ok {
		return nil, fmt.Errorf("Items is %T, want array", rawItems)
	}

	links := make([]string, 0, len(items))
	for i, item := range items {
		itemObj, _ := item.(map[string]any)
		linkObj, _ := itemObj["Links"].(map[string]any)
		href, _ := linkObj[link].(string)
		if href == "" {
			return nil, fmt.Errorf("item %d has no Links.%s", i, link)
		}
		links = append(links, href)
	}
	return links, nil
}

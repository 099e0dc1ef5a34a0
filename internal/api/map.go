package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/fastroute/console/internal/model"
)

// GetMapData fetches the grid, blocked paths, restaurants, and bots.
func (c *Client) GetMapData(ctx context.Context) (*model.MapData, error) {
	var resp model.MapData
	if err := c.get(ctx, "/api/map/data", nil, &resp); err != nil {
		return nil, fmt.Errorf("get map data: %w", err)
	}
	return &resp, nil
}

// GetStats fetches the aggregate dashboard counters.
func (c *Client) GetStats(ctx context.Context) (*model.Stats, error) {
	var resp model.Stats
	if err := c.get(ctx, "/api/map/stats", nil, &resp); err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return &resp, nil
}

// GetRoute asks the routing collaborator for a path between two points.
func (c *Client) GetRoute(ctx context.Context, start, end model.RoutePoint) (*model.Route, error) {
	query := url.Values{}
	query.Set("start_x", strconv.Itoa(start.X))
	query.Set("start_y", strconv.Itoa(start.Y))
	query.Set("end_x", strconv.Itoa(end.X))
	query.Set("end_y", strconv.Itoa(end.Y))

	var resp model.Route
	if err := c.get(ctx, "/api/map/route", query, &resp); err != nil {
		return nil, fmt.Errorf("get route (%d,%d)->(%d,%d): %w", start.X, start.Y, end.X, end.Y, err)
	}
	return &resp, nil
}

package api

import (
	"context"
	"net/http"
)

// ListCases returns every case
func (c *Client) ListCases(ctx context.Context) ([]CaseRecord, error) {
	var cases []CaseRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/cases", nil, &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

// ListClients returns every client
func (c *Client) ListClients(ctx context.Context) ([]ClientRecord, error) {
	var clients []ClientRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/clients", nil, &clients); err != nil {
		return nil, err
	}
	return clients, nil
}

// Overview returns the dashboard counters
func (c *Client) Overview(ctx context.Context) (*Overview, error) {
	var o Overview
	if err := c.doJSON(ctx, http.MethodGet, "/api/dashboard/overview", nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// Activity returns the recent activity feed
func (c *Client) Activity(ctx context.Context) ([]ActivityItem, error) {
	var items []ActivityItem
	if err := c.doJSON(ctx, http.MethodGet, "/api/dashboard/activity", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Deadlines returns upcoming deadlines
func (c *Client) Deadlines(ctx context.Context) ([]Deadline, error) {
	var items []Deadline
	if err := c.doJSON(ctx, http.MethodGet, "/api/dashboard/deadlines", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Notifications returns dashboard notifications
func (c *Client) Notifications(ctx context.Context) ([]Notification, error) {
	var items []Notification
	if err := c.doJSON(ctx, http.MethodGet, "/api/dashboard/notifications", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

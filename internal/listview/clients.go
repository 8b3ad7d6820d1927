package listview

import (
	"context"
	"strconv"

	"github.com/casedesk/cli/internal/api"
)

// Client is a client record with its display fields
type Client struct {
	api.ClientRecord
	LastActivityDisplay string
	StatusSlug          string
}

// NewClient derives the display fields for rec
func NewClient(rec api.ClientRecord) Client {
	return Client{
		ClientRecord:        rec,
		LastActivityDisplay: formatTime(rec.LastActivityAt, dateLayout),
		StatusSlug:          StatusSlug(rec.Status),
	}
}

// Key is the client ID, or the name for records without one
func (c Client) Key() string {
	if c.ClientID != "" {
		return c.ClientID
	}
	return c.Name
}

// SearchValues are the visible table columns
func (c Client) SearchValues() []string {
	return []string{c.Name, c.ContactEmail, strconv.Itoa(c.NumCases), c.LastActivityDisplay, c.Status}
}

// NewClientList creates a client list; clients have no attribute filters
func NewClientList() *List[Client] {
	return NewList[Client](nil)
}

// ClientSource is the API call behind the client list
type ClientSource interface {
	ListClients(ctx context.Context) ([]api.ClientRecord, error)
}

// FetchClients adapts src to a FetchFunc
func FetchClients(src ClientSource) FetchFunc[Client] {
	return func(ctx context.Context) ([]Client, error) {
		recs, err := src.ListClients(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]Client, len(recs))
		for i, r := range recs {
			out[i] = NewClient(r)
		}
		return out, nil
	}
}

package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ListOptions are the common list parameters. Filters holds resource
// specific ones such as status or property_id.
type ListOptions struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
	Filters   map[string]string
}

func (o ListOptions) values() url.Values {
	v := url.Values{}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if o.Limit > 0 {
		v.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Search != "" {
		v.Set("search", o.Search)
	}
	if o.SortBy != "" {
		v.Set("sortBy", o.SortBy)
	}
	if o.SortOrder != "" {
		v.Set("sortOrder", o.SortOrder)
	}
	for k, val := range o.Filters {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v
}

func (c *Client) ListProperties(ctx context.Context, opts ListOptions) (*PropertyPage, error) {
	var out PropertyPage
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/v1/properties", query: opts.values()}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProperty(ctx context.Context, id string) (*Property, error) {
	var out Property
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/v1/properties/" + url.PathEscape(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListInspections(ctx context.Context, opts ListOptions) (*InspectionPage, error) {
	var out InspectionPage
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/v1/inspections", query: opts.values()}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetInspection(ctx context.Context, id string) (*Inspection, error) {
	var out Inspection
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/v1/inspections/" + url.PathEscape(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateInspectionStatus moves an inspection to status. The server rejects
// transitions its state machine does not allow.
func (c *Client) UpdateInspectionStatus(ctx context.Context, id, status, notes string) (*Inspection, error) {
	body := map[string]string{"status": status}
	if notes != "" {
		body["notes"] = notes
	}
	var out Inspection
	r := request{method: http.MethodPatch, path: "/v1/inspections/" + url.PathEscape(id) + "/status", body: body}
	if _, err := c.do(ctx, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PushSync sends operations captured offline. Replayed client op ids come
// back with Duplicate set.
func (c *Client) PushSync(ctx context.Context, deviceID string, ops []SyncOperation) ([]SyncReceipt, error) {
	body := struct {
		DeviceID   string          `json:"device_id"`
		Operations []SyncOperation `json:"operations"`
	}{deviceID, ops}

	var out struct {
		Operations []SyncReceipt `json:"operations"`
	}
	if _, err := c.do(ctx, request{method: http.MethodPost, path: "/v1/sync", body: body}, &out); err != nil {
		return nil, err
	}
	return out.Operations, nil
}

func (c *Client) SyncStatus(ctx context.Context, id string) (*SyncState, error) {
	var out SyncState
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/v1/sync/" + url.PathEscape(id)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

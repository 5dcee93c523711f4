package api

import (
	"context"
	"fmt"
	"net/url"

	"lto-cli/schedule"
)

type blockDatesResponse struct {
	Blocks []BlockDate `json:"blocks"`
}

// GetBlockDates fetches the capacity overrides for one ISO date. An empty
// list is a valid answer meaning no override exists for that date.
func (c *Client) GetBlockDates(ctx context.Context, date string) ([]BlockDate, error) {
	q := url.Values{}
	q.Set("date", date)
	req, err := c.newRequest(ctx, "GET", "/appointment/block-dates", q, nil, true)
	if err != nil {
		return nil, err
	}

	var resp blockDatesResponse
	if err := c.doJSON(req, &resp); err != nil {
		return nil, err
	}
	return resp.Blocks, nil
}

// BlockDates implements schedule.BlockSource.
func (c *Client) BlockDates(ctx context.Context, date string) ([]schedule.BlockEntry, error) {
	blocks, err := c.GetBlockDates(ctx, date)
	if err != nil {
		return nil, err
	}
	entries := make([]schedule.BlockEntry, 0, len(blocks))
	for _, block := range blocks {
		entries = append(entries, schedule.BlockEntry{
			Date:     block.Date,
			Time:     block.Time,
			MaxSlots: block.MaxSlots,
		})
	}
	return entries, nil
}

// SaveBlockDate sets the capacity override for one (date, slot) pair.
// Capacity runs 0 through 6.
func (c *Client) SaveBlockDate(ctx context.Context, date, timeSlot string, maxSlots int) error {
	if maxSlots < 0 || maxSlots > schedule.WeekdayCapacity {
		return fmt.Errorf("max slots must be between 0 and %d, got %d", schedule.WeekdayCapacity, maxSlots)
	}
	payload := map[string]any{
		"date":     date,
		"time":     timeSlot,
		"maxSlots": maxSlots,
	}
	req, err := c.newJSONRequest(ctx, "POST", "/appointment/admin/block-dates", payload, true)
	if err != nil {
		return err
	}
	return c.doStatus(req)
}

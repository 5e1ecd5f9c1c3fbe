package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"go.uber.org/zap"
)

// PageSpec describes how one endpoint paginates and how its responses unwrap.
type PageSpec struct {
	// OffsetParam is the query parameter carrying the record offset.
	OffsetParam string
	// LimitParam is the query parameter carrying the page size.
	LimitParam string
	// DataKey names the response field holding the data array. Empty when the
	// array is the whole response.
	DataKey string
	// TotalKey names an optional total-count field next to the data array.
	TotalKey string
	// StopOnShortRound ends pagination when a round returns fewer items than
	// a full round would. Used by sources without a reliable trailing
	// short-page signal.
	StopOnShortRound bool
}

// UnwrapPage extracts the item array, and a total-count hint when available,
// from one raw page response.
func UnwrapPage(payload json.RawMessage, spec PageSpec) ([]json.RawMessage, int, error) {
	if spec.DataKey == "" {
		var items []json.RawMessage
		if err := json.Unmarshal(payload, &items); err != nil {
			return nil, 0, fmt.Errorf("response is not an array: %w", err)
		}
		return items, 0, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, 0, fmt.Errorf("response is not an object: %w", err)
	}

	var items []json.RawMessage
	if raw, ok := envelope[spec.DataKey]; ok {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, 0, fmt.Errorf("field %q is not an array: %w", spec.DataKey, err)
		}
	}

	total := 0
	if spec.TotalKey != "" {
		if raw, ok := envelope[spec.TotalKey]; ok {
			// A non-numeric total is treated as absent.
			_ = json.Unmarshal(raw, &total)
		}
	}

	return items, total, nil
}

// FetchAllPages drives the endpoint to exhaustion.
//
// The first page is fetched synchronously; a failure there is fatal for this
// source and surfaces as an error. Subsequent pages are fetched in rounds of
// up to MaxConcurrentRequests parallel calls at consecutive offsets. Failed
// pages within a round are skipped; a zero-yield round ends pagination. Page
// order of arrival is irrelevant because callers treat the result as a record
// set, not a sequence.
func (c *Client) FetchAllPages(ctx context.Context, endpoint string, pageSize int, params url.Values, spec PageSpec) ([]json.RawMessage, error) {
	if pageSize < 1 {
		return nil, fmt.Errorf("page size must be >= 1, got %d", pageSize)
	}

	base := url.Values{}
	for k, vs := range params {
		base[k] = vs
	}
	base.Set(spec.LimitParam, strconv.Itoa(pageSize))

	first := c.Execute(ctx, http.MethodGet, endpoint, withOffset(base, spec.OffsetParam, 0))
	if !first.OK() {
		return nil, fmt.Errorf("first page fetch failed: %w", first.AsError())
	}

	items, total, err := UnwrapPage(first.Payload, spec)
	if err != nil {
		return nil, err
	}

	if len(items) < pageSize {
		return items, nil
	}

	if total > 0 {
		remaining := (total - pageSize + pageSize - 1) / pageSize
		c.log.Info("fetching additional pages",
			zap.String("endpoint", endpoint),
			zap.Int("pages", remaining))
	}

	offset := pageSize
	for {
		offsets := make([]int, 0, c.maxConcurrent)
		for i := 0; i < c.maxConcurrent; i++ {
			next := offset + i*pageSize
			if total > 0 && next >= total {
				break
			}
			offsets = append(offsets, next)
		}
		if len(offsets) == 0 {
			break
		}

		pages := make([][]json.RawMessage, len(offsets))
		var wg sync.WaitGroup
		for i, pageOffset := range offsets {
			wg.Add(1)
			go func(i, pageOffset int) {
				defer wg.Done()
				out := c.Execute(ctx, http.MethodGet, endpoint, withOffset(base, spec.OffsetParam, pageOffset))
				if !out.OK() {
					c.log.Error("page fetch failed",
						zap.String("endpoint", endpoint),
						zap.Int("offset", pageOffset),
						zap.String("outcome", out.Kind.String()))
					return
				}
				batch, _, err := UnwrapPage(out.Payload, spec)
				if err != nil {
					c.log.Error("page unwrap failed",
						zap.String("endpoint", endpoint),
						zap.Int("offset", pageOffset),
						zap.Error(err))
					return
				}
				pages[i] = batch
			}(i, pageOffset)
		}
		wg.Wait()

		newItems := 0
		for _, batch := range pages {
			items = append(items, batch...)
			newItems += len(batch)
		}

		if newItems == 0 {
			break
		}

		offset += len(offsets) * pageSize
		c.log.Info("pagination progress",
			zap.String("endpoint", endpoint),
			zap.Int("fetched", len(items)))

		if spec.StopOnShortRound && newItems < len(offsets)*pageSize {
			break
		}
	}

	return items, nil
}

// withOffset copies the base query with the offset parameter set.
func withOffset(base url.Values, param string, offset int) url.Values {
	q := url.Values{}
	for k, vs := range base {
		q[k] = vs
	}
	q.Set(param, strconv.Itoa(offset))
	return q
}

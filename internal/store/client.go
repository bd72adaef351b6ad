package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	requestTimeout = 30 * time.Second
	dialTimeout    = 10 * time.Second

	defaultAttempts    = 3
	defaultBackoffBase = 500 * time.Millisecond
)

// Store talks to the hosted table store over its REST interface
// (GET/POST/PATCH/DELETE per table, `field=op.value` filters). One Store
// is shared by all request handlers; the underlying http.Client is safe
// for concurrent use.
type Store struct {
	baseURL string
	key     string
	client  *http.Client

	attempts    int
	backoffBase time.Duration
}

func New(baseURL, key string) *Store {
	return &Store{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		client: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: dialTimeout}).DialContext,
			},
		},
		attempts:    defaultAttempts,
		backoffBase: defaultBackoffBase,
	}
}

// do issues one store call with the retry policy: transport errors and
// 502/503/504 retry with exponential backoff, anything else propagates
// immediately. A 4xx becomes a *RequestError; exhausted retries become
// ErrStoreUnavailable.
func (s *Store) do(ctx context.Context, method, table string, q url.Values, payload any) ([]byte, error) {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", table, err)
		}
	}

	endpoint := s.baseURL + "/" + table
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < s.attempts; attempt++ {
		if attempt > 0 {
			backoff := s.backoffBase << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("apikey", s.key)
		req.Header.Set("Authorization", "Bearer "+s.key)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if method == http.MethodPost || method == http.MethodPatch || method == http.MethodDelete {
			// Ask the store to echo affected rows. It does not always
			// honor this, hence the read-back in the write paths.
			req.Header.Set("Prefer", "return=representation")
		}

		resp, err := s.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			log.Printf("[WARN] store %s %s attempt %d: %v", method, table, attempt+1, err)
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			lastErr = readErr
			continue
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return respBody, nil
		case resp.StatusCode == http.StatusBadGateway,
			resp.StatusCode == http.StatusServiceUnavailable,
			resp.StatusCode == http.StatusGatewayTimeout:
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			log.Printf("[WARN] store %s %s attempt %d: status %d", method, table, attempt+1, resp.StatusCode)
			continue
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			return nil, &RequestError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
		default:
			return nil, fmt.Errorf("store %s %s: unexpected status %d", method, table, resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("%w: %s %s after %d attempts: %v", ErrStoreUnavailable, method, table, s.attempts, lastErr)
}

// listRows fetches every row matching the query.
func listRows[T any](ctx context.Context, s *Store, table string, q url.Values) ([]T, error) {
	body, err := s.do(ctx, http.MethodGet, table, q, nil)
	if err != nil {
		return nil, err
	}
	var rows []T
	if len(body) == 0 {
		return rows, nil
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode %s rows: %w", table, err)
	}
	return rows, nil
}

// firstRow fetches at most one row; nil means no match.
func firstRow[T any](ctx context.Context, s *Store, table string, q url.Values) (*T, error) {
	q = cloneQuery(q)
	q.Set("limit", "1")
	rows, err := listRows[T](ctx, s, table, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// createRow inserts a row and returns it. When the store answers a write
// with an empty body, the row is reconciled by re-fetching the newest row
// matching the given distinguishing fields; failing that the write counts
// as unverified.
func createRow[T any](ctx context.Context, s *Store, table string, payload any, match url.Values) (*T, error) {
	body, err := s.do(ctx, http.MethodPost, table, nil, payload)
	if err != nil {
		return nil, err
	}
	if row := decodeFirst[T](body); row != nil {
		return row, nil
	}

	match = cloneQuery(match)
	match.Set("order", "id.desc")
	row, err := firstRow[T](ctx, s, table, match)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("%w: insert into %s returned no row", ErrWriteVerification, table)
	}
	return row, nil
}

// patchRow updates the rows matching q and returns the new state,
// re-fetching when the store does not echo the row. A patch that matches
// no row is a not-found, not a silent success. Soft-deleting tables pass
// a query carrying the deleted_at guard so a hidden row never matches.
func patchRow[T any](ctx context.Context, s *Store, table string, q url.Values, patch any) (*T, error) {
	body, err := s.do(ctx, http.MethodPatch, table, q, patch)
	if err != nil {
		return nil, err
	}
	if row := decodeFirst[T](body); row != nil {
		return row, nil
	}

	row, err := firstRow[T](ctx, s, table, q)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrNotFound
	}
	return row, nil
}

// deleteRows removes matching rows. An echoed empty array means nothing
// matched; when the store does not echo at all, a re-fetch confirms the
// delete by absence. A row still present after a 2xx is an unverified
// write, not a success.
func deleteRows(ctx context.Context, s *Store, table string, q url.Values) error {
	body, err := s.do(ctx, http.MethodDelete, table, q, nil)
	if err != nil {
		return err
	}
	var rows []json.RawMessage
	if len(body) > 0 && json.Unmarshal(body, &rows) == nil {
		if len(rows) == 0 {
			return ErrNotFound
		}
		return nil
	}

	row, err := firstRow[json.RawMessage](ctx, s, table, q)
	if err != nil {
		return err
	}
	if row != nil {
		return fmt.Errorf("%w: delete from %s left the row", ErrWriteVerification, table)
	}
	return nil
}

func decodeFirst[T any](body []byte) *T {
	var rows []T
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, &rows); err != nil || len(rows) == 0 {
		return nil
	}
	return &rows[0]
}

// Filter syntax helpers (`field=eq.value`, `field=is.null`, `field=in.(...)`).

const isNull = "is.null"

func eq(v any) string {
	return fmt.Sprintf("eq.%v", v)
}

func in(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return "in.(" + strings.Join(parts, ",") + ")"
}

func byID(id int64) url.Values {
	q := url.Values{}
	q.Set("id", eq(id))
	return q
}

// activeByID narrows to the row only while it is not soft-deleted.
func activeByID(id int64) url.Values {
	q := byID(id)
	q.Set("deleted_at", isNull)
	return q
}

func cloneQuery(q url.Values) url.Values {
	out := url.Values{}
	for k, vs := range q {
		for _, v := range vs {
			out.Add(k, v)
		}
	}
	return out
}

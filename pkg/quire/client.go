package quire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// DefaultQueryURL is the base URL of the Google Visualization query endpoint.
const DefaultQueryURL = "https://docs.google.com/spreadsheets/d"

// valueInputOption makes Sheets parse written text the way a user typing it
// would, so dates, numbers and TRUE/FALSE are stored typed and can be
// compared by the query endpoint.
const valueInputOption = "USER_ENTERED"

type sheetsClient struct {
	srv           *sheets.Service
	http          *http.Client
	spreadsheetID string
	queryURL      string
}

func newSheetsClient(ctx context.Context, ts oauth2.TokenSource, spreadsheetID, queryURL string) (*sheetsClient, error) {
	srv, err := sheets.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	if queryURL == "" {
		queryURL = DefaultQueryURL
	}

	return &sheetsClient{
		srv:           srv,
		http:          oauth2.NewClient(ctx, ts),
		spreadsheetID: spreadsheetID,
		queryURL:      strings.TrimRight(queryURL, "/"),
	}, nil
}

func (c *sheetsClient) Read(ctx context.Context, range_ string) ([][]interface{}, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, range_).Context(ctx).Do()
	if err != nil {
		return nil, remoteError("read", range_, err)
	}
	return resp.Values, nil
}

func (c *sheetsClient) Write(ctx context.Context, range_ string, values [][]interface{}) error {
	valueRange := &sheets.ValueRange{
		Values: values,
	}

	_, err := c.srv.Spreadsheets.Values.Update(c.spreadsheetID, range_, valueRange).
		ValueInputOption(valueInputOption).
		Context(ctx).
		Do()

	if err != nil {
		return remoteError("write to", range_, err)
	}
	return nil
}

func (c *sheetsClient) Append(ctx context.Context, range_ string, values [][]interface{}) (string, error) {
	valueRange := &sheets.ValueRange{
		Values: values,
	}

	resp, err := c.srv.Spreadsheets.Values.Append(c.spreadsheetID, range_, valueRange).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()

	if err != nil {
		return "", remoteError("append to", range_, err)
	}
	if resp.Updates == nil {
		return "", nil
	}
	return resp.Updates.UpdatedRange, nil
}

func (c *sheetsClient) BatchWrite(ctx context.Context, data []ValueRange) error {
	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: valueInputOption,
		Data:             make([]*sheets.ValueRange, len(data)),
	}
	for i, d := range data {
		req.Data[i] = &sheets.ValueRange{Range: d.Range, Values: d.Values}
	}

	_, err := c.srv.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return remoteError("batch write", "", err)
	}
	return nil
}

// Query runs query against the visualization endpoint and returns the CSV body.
func (c *sheetsClient) Query(ctx context.Context, sheet, query string) (string, error) {
	u := fmt.Sprintf("%s/%s/gviz/tq?tqx=out:csv&tq=%s",
		c.queryURL, url.PathEscape(c.spreadsheetID), encodeQueryComponent(query))
	if sheet != "" {
		u += "&sheet=" + encodeQueryComponent(sheet)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build query request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &RemoteError{Op: "query", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &RemoteError{
			Op:         "query",
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(body))),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &RemoteError{Op: "query", StatusCode: resp.StatusCode, Err: err}
	}
	return string(body), nil
}

// encodeQueryComponent escapes s like encodeURIComponent: spaces become %20.
func encodeQueryComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func remoteError(op, range_ string, err error) error {
	re := &RemoteError{Op: op, Range: range_, Err: err}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		re.StatusCode = gerr.Code
	}
	return re
}

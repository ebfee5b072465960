package quickbooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// DefaultPageSize is the MAXRESULTS used by QueryAll when none is configured.
const DefaultPageSize = 1000

// Credential is a bearer token scoped to one company (realm).
type Credential struct {
	RealmID     string
	AccessToken string
}

// CredentialSource returns a valid credential, refreshing it first when needed.
type CredentialSource interface {
	Credential(ctx context.Context) (*Credential, error)
}

// APIError is returned for every non-2xx response from the accounting API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quickbooks API error (%d): %s", e.StatusCode, e.Body)
}

var unsupportedOperation = regexp.MustCompile(`(?is)operation\b.*\bnot supported`)

// IsUnsupportedOperation reports whether err is the API's "operation ... not supported" fault.
func IsUnsupportedOperation(err error) bool {
	if err == nil {
		return false
	}
	return unsupportedOperation.MatchString(err.Error())
}

// Client talks to the QuickBooks Online v3 REST API for the connected realm.
type Client struct {
	baseURL      string
	minorVersion string
	pageSize     int
	creds        CredentialSource
	httpClient   *http.Client
}

// NewClient creates a client. pageSize <= 0 falls back to DefaultPageSize.
func NewClient(baseURL, minorVersion string, pageSize int, creds CredentialSource) *Client {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		minorVersion: minorVersion,
		pageSize:     pageSize,
		creds:        creds,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
	}
}

// SetHTTPClient replaces the underlying transport client.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

// RealmID returns the realm of the current credential.
func (c *Client) RealmID(ctx context.Context) (string, error) {
	cred, err := c.creds.Credential(ctx)
	if err != nil {
		return "", err
	}
	return cred.RealmID, nil
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body interface{}) ([]byte, error) {
	cred, err := c.creds.Credential(ctx)
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	if c.minorVersion != "" {
		params.Set("minorversion", c.minorVersion)
	}
	endpoint := fmt.Sprintf("%s/v3/company/%s/%s?%s", c.baseURL, url.PathEscape(cred.RealmID), path, params.Encode())

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	hc := &http.Client{
		Timeout: c.httpClient.Timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cred.AccessToken, TokenType: "Bearer"}),
			Base:   c.httpClient.Transport,
		},
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quickbooks request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

// Query runs a single query statement and returns the QueryResponse members.
func (c *Client) Query(ctx context.Context, statement string) (map[string]json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, "query", url.Values{"query": {statement}}, nil)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		QueryResponse map[string]json.RawMessage `json:"QueryResponse"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse query response: %w", err)
	}
	return envelope.QueryResponse, nil
}

// QueryAll pages through SELECT * FROM entity WHERE whereClause.
// The 1-indexed cursor advances by the number of rows actually received and
// the loop ends on an empty or short page.
func (c *Client) QueryAll(ctx context.Context, entity, whereClause string) ([]json.RawMessage, error) {
	var items []json.RawMessage
	start := 1

	for {
		statement := fmt.Sprintf("SELECT * FROM %s", entity)
		if whereClause != "" {
			statement += " WHERE " + whereClause
		}
		statement += fmt.Sprintf(" STARTPOSITION %d MAXRESULTS %d", start, c.pageSize)

		resp, err := c.Query(ctx, statement)
		if err != nil {
			return nil, fmt.Errorf("query %s at %d: %w", entity, start, err)
		}

		var page []json.RawMessage
		if raw, ok := resp[entity]; ok && len(raw) > 0 {
			if err := json.Unmarshal(raw, &page); err != nil {
				return nil, fmt.Errorf("decode %s page: %w", entity, err)
			}
		}
		if len(page) == 0 {
			break
		}

		items = append(items, page...)
		start += len(page)
		if len(page) < c.pageSize {
			break
		}
	}

	return items, nil
}

// Report fetches a named report (e.g. TransactionList) as raw JSON.
func (c *Client) Report(ctx context.Context, name string, params url.Values) (json.RawMessage, error) {
	body, err := c.do(ctx, http.MethodGet, "reports/"+name, params, nil)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// Read fetches a single entity and returns the object under its key, e.g. {"Bill": {...}} -> {...}.
func (c *Client) Read(ctx context.Context, endpoint, key, id string) (map[string]interface{}, error) {
	body, err := c.do(ctx, http.MethodGet, endpoint+"/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return nil, err
	}
	return unwrap(body, key)
}

// Create posts a new entity and returns the created object.
func (c *Client) Create(ctx context.Context, endpoint, key string, payload map[string]interface{}) (map[string]interface{}, error) {
	body, err := c.do(ctx, http.MethodPost, endpoint, nil, payload)
	if err != nil {
		return nil, err
	}
	return unwrap(body, key)
}

// SparseUpdate posts a partial update. payload must carry Id and SyncToken.
func (c *Client) SparseUpdate(ctx context.Context, endpoint, key string, payload map[string]interface{}) (map[string]interface{}, error) {
	if payload["Id"] == nil || payload["SyncToken"] == nil {
		return nil, errors.New("sparse update requires Id and SyncToken")
	}
	payload["sparse"] = true
	return c.Create(ctx, endpoint, key, payload)
}

// CompanyInfo returns the CompanyInfo object for the connected realm.
func (c *Client) CompanyInfo(ctx context.Context) (map[string]interface{}, error) {
	realmID, err := c.RealmID(ctx)
	if err != nil {
		return nil, err
	}
	return c.Read(ctx, "companyinfo", "CompanyInfo", realmID)
}

func unwrap(body []byte, key string) (map[string]interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var envelope map[string]interface{}
	if err := dec.Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	obj, ok := envelope[key].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("response has no %s object", key)
	}
	return obj, nil
}

// QuoteLiteral escapes a value for use inside a single-quoted query literal.
func QuoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "\\'") + "'"
}

// DateRange builds "field >= 'start' AND field <= 'end'".
func DateRange(field, start, end string) string {
	return field + " >= " + QuoteLiteral(start) + " AND " + field + " <= " + QuoteLiteral(end)
}

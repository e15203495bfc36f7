// Package client wraps the upstream contract-data REST API. Every
// authenticated call carries a bearer token read from the persisted field
// store; failures surface immediately with the backend's own message when
// one is present. No call is ever retried automatically.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matahariann/kontrakgen/model"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func New(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}
}

// envelope is the backend's uniform response shape.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// idResponse is the data payload of every create endpoint.
type idResponse struct {
	ID string `json:"id"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, authed bool) (json.RawMessage, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if authed {
		token, err := c.tokens.Token()
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		message := fallbackErrorMessage
		if json.Unmarshal(respBody, &env) == nil && env.Message != "" {
			message = env.Message
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, &MalformedResponseError{Endpoint: path, Reason: "bukan JSON yang valid"}
	}
	return env.Data, nil
}

func decodeData(endpoint string, data json.RawMessage, out any) error {
	if len(data) == 0 || string(data) == "null" {
		return &MalformedResponseError{Endpoint: endpoint, Reason: "data tidak ada"}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &MalformedResponseError{Endpoint: endpoint, Reason: err.Error()}
	}
	return nil
}

// Login exchanges credentials for a bearer token. The caller persists it.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body := map[string]string{"username": username, "password": password}
	data, err := c.do(ctx, http.MethodPost, "/login", body, false)
	if err != nil {
		return "", err
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := decodeData("/login", data, &result); err != nil {
		return "", err
	}
	if result.Token == "" {
		return "", &MalformedResponseError{Endpoint: "/login", Reason: "token kosong"}
	}
	return result.Token, nil
}

func (c *Client) AddVendor(ctx context.Context, v *model.Vendor) (string, error) {
	data, err := c.do(ctx, http.MethodPost, "/add-vendor", v, true)
	if err != nil {
		return "", err
	}
	var result idResponse
	if err := decodeData("/add-vendor", data, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", &MalformedResponseError{Endpoint: "/add-vendor", Reason: "id kosong"}
	}
	return result.ID, nil
}

func (c *Client) UpdateVendor(ctx context.Context, v *model.Vendor) error {
	if v.ID == "" {
		return fmt.Errorf("vendor belum memiliki id tersimpan")
	}
	_, err := c.do(ctx, http.MethodPut, "/update-vendor", v, true)
	return err
}

func (c *Client) DeleteVendor(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/vendor/"+url.PathEscape(id), nil, true)
	return err
}

// AddOfficials submits all rows in one batch call and returns the assigned
// identifiers in row order.
func (c *Client) AddOfficials(ctx context.Context, officials []model.Official) ([]string, error) {
	body := map[string]any{"pejabat": officials}
	data, err := c.do(ctx, http.MethodPost, "/add-official", body, true)
	if err != nil {
		return nil, err
	}

	var ids []string
	if err := decodeData("/add-official", data, &ids); err != nil {
		return nil, err
	}
	if len(ids) != len(officials) {
		return nil, &MalformedResponseError{
			Endpoint: "/add-official",
			Reason:   fmt.Sprintf("jumlah id (%d) tidak sama dengan jumlah pejabat (%d)", len(ids), len(officials)),
		}
	}
	return ids, nil
}

func (c *Client) UpdateOfficial(ctx context.Context, o *model.Official) error {
	if o.ID == "" {
		return fmt.Errorf("pejabat belum memiliki id tersimpan")
	}
	_, err := c.do(ctx, http.MethodPut, "/update-official/"+url.PathEscape(o.ID), o, true)
	return err
}

func (c *Client) GetPeriode(ctx context.Context) ([]string, error) {
	data, err := c.do(ctx, http.MethodGet, "/get-periode", nil, true)
	if err != nil {
		return nil, err
	}
	var periods []string
	if err := decodeData("/get-periode", data, &periods); err != nil {
		return nil, err
	}
	return periods, nil
}

func (c *Client) GetOfficialsByPeriode(ctx context.Context, periode string) ([]model.Official, error) {
	data, err := c.do(ctx, http.MethodGet, "/get-official-by-periode/"+url.PathEscape(periode), nil, true)
	if err != nil {
		return nil, err
	}
	var officials []model.Official
	if err := decodeData("/get-official-by-periode", data, &officials); err != nil {
		return nil, err
	}
	return officials, nil
}

func (c *Client) AddDocument(ctx context.Context, d *model.Document) (string, error) {
	data, err := c.do(ctx, http.MethodPost, "/add-document", d, true)
	if err != nil {
		return "", err
	}
	var result idResponse
	if err := decodeData("/add-document", data, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", &MalformedResponseError{Endpoint: "/add-document", Reason: "id kosong"}
	}
	return result.ID, nil
}

func (c *Client) UpdateDocument(ctx context.Context, d *model.Document) error {
	if d.ID == "" {
		return fmt.Errorf("dokumen belum memiliki id tersimpan")
	}
	_, err := c.do(ctx, http.MethodPut, "/update-document/"+url.PathEscape(d.ID), d, true)
	return err
}

func (c *Client) GetDocument(ctx context.Context) (*model.Document, error) {
	data, err := c.do(ctx, http.MethodGet, "/get-document", nil, true)
	if err != nil {
		return nil, err
	}
	var doc model.Document
	if err := decodeData("/get-document", data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) AddContract(ctx context.Context, k *model.Contract) (string, error) {
	data, err := c.do(ctx, http.MethodPost, "/add-contract", k, true)
	if err != nil {
		return "", err
	}
	var result idResponse
	if err := decodeData("/add-contract", data, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", &MalformedResponseError{Endpoint: "/add-contract", Reason: "id kosong"}
	}
	return result.ID, nil
}

func (c *Client) UpdateContract(ctx context.Context, k *model.Contract) error {
	if k.ID == "" {
		return fmt.Errorf("kontrak belum memiliki id tersimpan")
	}
	_, err := c.do(ctx, http.MethodPut, "/update-contract/"+url.PathEscape(k.ID), k, true)
	return err
}

func (c *Client) DeleteContract(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/contract/"+url.PathEscape(id), nil, true)
	return err
}

func (c *Client) GetContracts(ctx context.Context) ([]model.Contract, error) {
	data, err := c.do(ctx, http.MethodGet, "/get-contract", nil, true)
	if err != nil {
		return nil, err
	}
	var contracts []model.Contract
	if err := decodeData("/get-contract", data, &contracts); err != nil {
		return nil, err
	}
	return contracts, nil
}

// ShowImage fetches the letterhead emblem as raw bytes.
func (c *Client) ShowImage(ctx context.Context, id string) ([]byte, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/showImage/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env envelope
		message := fallbackErrorMessage
		if json.Unmarshal(body, &env) == nil && env.Message != "" {
			message = env.Message
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: message}
	}
	if len(body) == 0 {
		return nil, &MalformedResponseError{Endpoint: "/showImage", Reason: "gambar kosong"}
	}
	return body, nil
}

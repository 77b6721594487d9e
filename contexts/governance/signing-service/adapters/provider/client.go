package provider

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"kvorum/contexts/governance/signing-service/domain/entities"
	domainerrors "kvorum/contexts/governance/signing-service/domain/errors"
)

// Client talks JSON over HTTP to the external e-signature provider.
// Server errors and transport failures map to ErrProviderUnavailable so the
// sync worker retries them; 4xx responses map to ErrProviderRejected.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    baseURL,
		Token:      token,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

type createDocumentRequest struct {
	ExternalRef    string        `json:"external_ref"`
	ProtocolNumber string        `json:"protocol_number"`
	FinalizedAt    time.Time     `json:"finalized_at"`
	Signers        []signerEntry `json:"signers"`
	PayloadBase64  string        `json:"payload_base64"`
}

type signerEntry struct {
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type createDocumentResponse struct {
	DocumentID string `json:"document_id"`
}

type statusResponse struct {
	Status            string     `json:"status"`
	OwnerSignedAt     *time.Time `json:"owner_signed_at,omitempty"`
	OrganizerSignedAt *time.Time `json:"organizer_signed_at,omitempty"`
}

func (c *Client) CreateDocument(ctx context.Context, req entities.CreateDocumentRequest) (string, error) {
	signers := make([]signerEntry, 0, len(req.Signers))
	for _, signer := range req.Signers {
		signers = append(signers, signerEntry{
			Role:  signer.Role,
			Name:  signer.Name,
			Email: signer.Email,
			Phone: signer.Phone,
		})
	}
	body := createDocumentRequest{
		ExternalRef:    req.SheetID,
		ProtocolNumber: req.ProtocolNumber,
		FinalizedAt:    req.FinalizedAt,
		Signers:        signers,
		PayloadBase64:  base64.StdEncoding.EncodeToString(req.Payload),
	}

	var out createDocumentResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/documents", body, &out); err != nil {
		return "", err
	}
	if out.DocumentID == "" {
		return "", fmt.Errorf("%w: empty document id", domainerrors.ErrProviderRejected)
	}
	return out.DocumentID, nil
}

func (c *Client) GetStatus(ctx context.Context, providerRef string) (entities.StatusReport, error) {
	var out statusResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/documents/"+providerRef+"/status", nil, &out); err != nil {
		return entities.StatusReport{}, err
	}
	return entities.StatusReport{
		Status:            entities.DocumentStatus(out.Status),
		OwnerSignedAt:     out.OwnerSignedAt,
		OrganizerSignedAt: out.OrganizerSignedAt,
	}, nil
}

func (c *Client) DownloadSigned(ctx context.Context, providerRef string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, "/v1/documents/"+providerRef+"/signed", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := classifyStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrProviderUnavailable, err)
	}
	return data, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := classifyStatus(resp.StatusCode); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domainerrors.ErrProviderRejected, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrProviderUnavailable, err)
	}
	return resp, nil
}

func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests || code >= 500:
		return fmt.Errorf("%w: provider returned %d", domainerrors.ErrProviderUnavailable, code)
	default:
		return fmt.Errorf("%w: provider returned %d", domainerrors.ErrProviderRejected, code)
	}
}

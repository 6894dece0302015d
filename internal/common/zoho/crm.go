// Package zoho pushes calculator leads into Zoho CRM.
package zoho

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	httpclient "advisor-routing/internal/common/http"
)

const DefaultBaseURL = "https://www.zohoapis.com/crm/v3"

var ErrLeadRejected = errors.New("zoho rejected lead")

type CRMClient struct {
	oauthToken string
	baseURL    string
	http       *httpclient.Client
}

// Lead maps onto the Zoho Leads module.
type Lead struct {
	ID          string `json:"id,omitempty"`
	FirstName   string `json:"First_Name"`
	LastName    string `json:"Last_Name"`
	Email       string `json:"Email"`
	Phone       string `json:"Phone,omitempty"`
	ZipCode     string `json:"Zip_Code,omitempty"`
	State       string `json:"State,omitempty"`
	Source      string `json:"Lead_Source,omitempty"`
	Description string `json:"Description,omitempty"`
	Owner       string `json:"Owner_Name,omitempty"`
}

type createResponse struct {
	Data []struct {
		Code    string `json:"code"`
		Details struct {
			ID string `json:"id"`
		} `json:"details"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"data"`
}

func NewCRMClient(baseURL, oauthToken string, timeout time.Duration) *CRMClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CRMClient{
		oauthToken: oauthToken,
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       httpclient.NewClient(timeout),
	}
}

// CreateLead inserts a lead and returns its Zoho id.
func (c *CRMClient) CreateLead(ctx context.Context, lead *Lead) (string, error) {
	var resp createResponse
	err := c.http.PostJSON(ctx, c.baseURL+"/Leads",
		map[string]string{"Authorization": "Zoho-oauthtoken " + c.oauthToken},
		map[string]interface{}{"data": []Lead{*lead}},
		&resp,
	)
	if err != nil {
		return "", fmt.Errorf("create lead: %w", err)
	}

	if len(resp.Data) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrLeadRejected)
	}
	if resp.Data[0].Status != "success" {
		return "", fmt.Errorf("%w: %s", ErrLeadRejected, resp.Data[0].Message)
	}
	return resp.Data[0].Details.ID, nil
}

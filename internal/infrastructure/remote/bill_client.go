// Package remote implements the bill store over the JSON API of another
// billed instance.
package remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

// API paths served by the HTTP host
const (
	PathBills = "/api/bills"
	PathFiles = "/api/files"
)

// BillClient implements port.BillStore over HTTP
type BillClient struct {
	base *BaseClient
}

// NewBillClient returns a client for the instance at baseURL
func NewBillClient(baseURL string, httpClient HTTPDoer) *BillClient {
	return &BillClient{base: NewBaseClient(baseURL, httpClient)}
}

// List fetches every bill. Receipt URLs are made absolute so they load
// from the remote instance rather than the local host.
func (c *BillClient) List(ctx context.Context) ([]*entity.Bill, error) {
	var bills []*entity.Bill
	if err := c.base.DoJSON(ctx, http.MethodGet, PathBills, nil, &bills); err != nil {
		return nil, err
	}
	c.resolve(bills...)
	return bills, nil
}

// Create posts a bill and returns the created set
func (c *BillClient) Create(ctx context.Context, bill *entity.Bill) ([]*entity.Bill, error) {
	var created []*entity.Bill
	if err := c.base.DoJSON(ctx, http.MethodPost, PathBills, c.outgoing(bill), &created); err != nil {
		return nil, err
	}
	c.resolve(created...)
	return created, nil
}

// Update replaces the bill identified by bill.ID
func (c *BillClient) Update(ctx context.Context, bill *entity.Bill) (*entity.Bill, error) {
	var updated entity.Bill
	path := PathBills + "/" + url.PathEscape(bill.ID)
	if err := c.base.DoJSON(ctx, http.MethodPut, path, c.outgoing(bill), &updated); err != nil {
		return nil, err
	}
	c.resolve(&updated)
	return &updated, nil
}

// outgoing copies bill with its receipt URL relative again, the form the
// remote instance stores and checks.
func (c *BillClient) outgoing(bill *entity.Bill) *entity.Bill {
	if bill == nil {
		return nil
	}
	out := *bill
	out.FileURL = c.base.RelativeURL(bill.FileURL)
	return &out
}

func (c *BillClient) resolve(bills ...*entity.Bill) {
	for _, b := range bills {
		if b != nil {
			b.FileURL = c.base.ResolveURL(b.FileURL)
		}
	}
}

// Upload sends the receipt as multipart form data with the owner's email
func (c *BillClient) Upload(ctx context.Context, upload port.Upload) (*port.UploadedFile, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("email", upload.Email); err != nil {
		return nil, fmt.Errorf("write email field: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, upload.FileName))
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create file part: %w", err)
	}
	if upload.Content != nil {
		if _, err := io.Copy(part, upload.Content); err != nil {
			return nil, fmt.Errorf("copy receipt: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	var uploaded port.UploadedFile
	if err := c.base.Do(ctx, http.MethodPost, PathFiles, &buf, mw.FormDataContentType(), &uploaded); err != nil {
		return nil, err
	}
	uploaded.FileURL = c.base.ResolveURL(uploaded.FileURL)
	return &uploaded, nil
}

var _ port.BillStore = (*BillClient)(nil)

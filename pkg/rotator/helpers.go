package rotator

import (
	"context"
	"encoding/json"
	"io"

	"github.com/PuerkitoBio/goquery"
)

// GetJSON fetches target and decodes the response body into out. Decoding
// errors are returned as produced by encoding/json.
func (r *Rotator) GetJSON(ctx context.Context, target string, out any, req *Request) error {
	resp, err := r.Fetch(ctx, target, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// GetText fetches target and returns the response body as a string.
func (r *Rotator) GetText(ctx context.Context, target string, req *Request) (string, error) {
	resp, err := r.Fetch(ctx, target, req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// GetDocument fetches target and parses the response body as HTML.
func (r *Rotator) GetDocument(ctx context.Context, target string, req *Request) (*goquery.Document, error) {
	resp, err := r.Fetch(ctx, target, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return goquery.NewDocumentFromReader(resp.Body)
}

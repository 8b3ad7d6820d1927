package api

import (
	"context"
	"net/http"
	"net/url"
)

type messageResponse struct {
	Message string `json:"message"`
}

// UploadDocuments sends files for RAG indexing in one multipart request.
// The returned message is the server's aggregate outcome for the batch.
func (c *Client) UploadDocuments(ctx context.Context, files []FilePart) (string, error) {
	var resp messageResponse
	if err := c.doMultipart(ctx, "/process-rag-documents", "documents", files, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ListDocuments returns the current knowledge-base inventory
func (c *Client) ListDocuments(ctx context.Context) ([]IndexedDocument, error) {
	var docs []IndexedDocument
	if err := c.doJSON(ctx, http.MethodGet, "/api/rag-documents", nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// DeleteDocument removes one document from the knowledge base
func (c *Client) DeleteDocument(ctx context.Context, filename string) (string, error) {
	var resp messageResponse
	path := "/api/rag-documents/" + url.PathEscape(filename)
	if err := c.doJSON(ctx, http.MethodDelete, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

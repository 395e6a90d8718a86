package api

import (
	"context"
	"fmt"

	"github.com/0097eo/chama-web/internal/model"
)

// ListChamaFiles returns the metadata of documents stored against a
// chama. Downloads go straight to the file's URL, not through this API.
func (c *Client) ListChamaFiles(ctx context.Context, chamaID string) ([]model.File, error) {
	var files []model.File
	if err := c.Get(ctx, "/files/chama/"+chamaID, &files); err != nil {
		return nil, fmt.Errorf("listing files for chama %s: %w", chamaID, err)
	}
	return files, nil
}

// DeleteChamaFile removes a stored document.
func (c *Client) DeleteChamaFile(ctx context.Context, fileID string) error {
	if err := c.Delete(ctx, "/files/"+fileID); err != nil {
		return fmt.Errorf("deleting file %s: %w", fileID, err)
	}
	return nil
}

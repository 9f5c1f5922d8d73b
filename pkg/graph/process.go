package graph

import (
	"context"
	"fmt"
	"sync"

	"github.com/OFFIS-RIT/kgraph/backend/pkg/common"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/loader"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/logger"
	"github.com/OFFIS-RIT/kgraph/backend/pkg/store"

	"golang.org/x/sync/errgroup"
)

// ProcessDocuments runs Process for every file, at most ParallelFiles at a
// time. Each document is an independent pipeline run. When st is not nil
// every result is saved as one batch for the session as soon as it is
// ready. Results are returned in the order of files.
func (c *GraphClient) ProcessDocuments(
	ctx context.Context,
	files []loader.GraphFile,
	sessionID string,
	st store.GraphStorage,
) ([]*common.Result, error) {
	results := make([]*common.Result, len(files))
	saveMu := sync.Mutex{}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallelFiles)
	for i, file := range files {
		g.Go(func() error {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			default:
			}

			text, err := file.GetText(gCtx)
			if err != nil {
				return fmt.Errorf("failed to load document %s: %w", file.ID, err)
			}

			res, err := c.Process(gCtx, string(text), file.ID)
			if err != nil {
				return err
			}
			results[i] = res

			if st == nil {
				return nil
			}
			saveMu.Lock()
			defer saveMu.Unlock()
			if err := st.SaveBatch(gCtx, common.NewBatch(sessionID, res)); err != nil {
				return fmt.Errorf("failed to save document %s: %w", file.ID, err)
			}
			logger.Info("[Graph] Saved document", "session", sessionID, "document", file.ID, "entities", len(res.Entities))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

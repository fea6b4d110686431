package mongoquery

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/sync/errgroup"
)

// Page is the result of a find-many operation. Total counts the filtered
// query before pagination; Data runs the paginated cursor. Each thunk runs
// its query every time it is called and neither triggers the other.
type Page struct {
	Total func(ctx context.Context) (int64, error)
	Data  func(ctx context.Context) ([]bson.M, error)
}

// PageResult holds the evaluated halves of a Page. Unrequested halves stay
// nil.
type PageResult struct {
	Total *int64   `json:"total,omitempty"`
	Data  []bson.M `json:"data,omitempty"`
}

// NewPage builds a Page over a count function and a cursor factory.
func NewPage(count func(ctx context.Context) (int64, error), cursor func() Cursor, p *Pagination, s *Sort) *Page {
	return &Page{
		Total: count,
		Data: func(ctx context.Context) ([]bson.M, error) {
			return Apply(cursor(), p, s).All(ctx)
		},
	}
}

// Resolve evaluates the requested halves concurrently.
func (p *Page) Resolve(ctx context.Context, wantTotal, wantData bool) (PageResult, error) {
	var res PageResult
	g, ctx := errgroup.WithContext(ctx)
	if wantTotal {
		g.Go(func() error {
			n, err := p.Total(ctx)
			if err != nil {
				return err
			}
			res.Total = &n
			return nil
		})
	}
	if wantData {
		g.Go(func() error {
			docs, err := p.Data(ctx)
			if err != nil {
				return err
			}
			res.Data = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return PageResult{}, err
	}
	return res, nil
}

package metadata

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/toolsverse/foundation/pkg/dataset"
	"github.com/toolsverse/foundation/pkg/tree"
)

// Extractor produces metadata DataSets.
type Extractor interface {
	// Extract returns the DataSet for req, with the canonical fields of
	// req.Type first.
	Extract(ctx context.Context, req Request) (*dataset.DataSet, error)

	// SupportedTypes lists the types Extract accepts, in catalog order.
	SupportedTypes() []Type
}

// Supports reports whether e can extract t.
func Supports(e Extractor, t Type) bool {
	for _, s := range e.SupportedTypes() {
		if s == t {
			return true
		}
	}
	return false
}

// ExtractMany runs reqs concurrently and returns the results in request
// order. The first failure cancels the remaining requests.
func ExtractMany(ctx context.Context, e Extractor, reqs []Request) ([]*dataset.DataSet, error) {
	results := make([]*dataset.DataSet, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, req := range reqs {
		g.Go(func() error {
			ds, err := e.Extract(ctx, req)
			if err != nil {
				return fmt.Errorf("%s: %w", req, err)
			}
			results[i] = ds
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Item is the value of a metadata tree node.
type Item struct {
	Request Request
	Data    *dataset.DataSet
}

// Tree extracts root and then, depth levels deep, every supported child
// type of each record, following TypesByParent. A depth of zero returns
// only the root.
func Tree(ctx context.Context, e Extractor, root Request, depth int) (*tree.Node[Item], error) {
	ds, err := e.Extract(ctx, root)
	if err != nil {
		return nil, err
	}
	node := tree.New(Item{Request: root, Data: ds})
	if err := expand(ctx, e, node, depth); err != nil {
		return nil, err
	}
	return node, nil
}

func expand(ctx context.Context, e Extractor, node *tree.Node[Item], depth int) error {
	if depth <= 0 {
		return nil
	}
	item := node.Value
	for row := range item.Data.Records {
		for _, ct := range ChildTypes(item.Request.Type) {
			if !Supports(e, ct) {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			req := childRequest(item.Request, item.Data, row, ct)
			ds, err := e.Extract(ctx, req)
			if err != nil {
				return fmt.Errorf("%s: %w", req, err)
			}
			child := node.Add(Item{Request: req, Data: ds})
			if err := expand(ctx, e, child, depth-1); err != nil {
				return err
			}
		}
	}
	return nil
}

// childRequest scopes a request for child type ct to one record of the
// parent result.
func childRequest(parent Request, ds *dataset.DataSet, row int, ct Type) Request {
	req := Request{Type: ct, Catalog: parent.Catalog, Schema: parent.Schema}
	str := func(field string) string { return ds.StringValue(row, field) }

	switch parent.Type {
	case Catalogs:
		req.Catalog = str("TABLE_CATALOG")
	case Schemas:
		req.Catalog = str("TABLE_CATALOG")
		req.Schema = str("TABLE_SCHEMA")
	case Tables, Views:
		req.Schema = str("TABLE_SCHEMA")
		req.Object = str("TABLE_NAME")
	case Procedures:
		req.Schema = str("PROCEDURE_SCHEMA")
		req.Object = str("PROCEDURE_NAME")
	}
	return req
}

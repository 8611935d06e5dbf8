package catalogfile

import (
	"context"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kart-sku/internal/domain/product"
)

const duplicateFPR = 0.001

// ReadFile decodes one catalog file. Files ending in .gz are decompressed
// with a parallel gzip reader.
func ReadFile(path string) ([]product.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	products, err := Decode(r)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return products, nil
}

// Catalog is the merged content of several files.
type Catalog struct {
	Products []product.Product
	// Duplicates counts occurrences of every product id seen more than once.
	// Only the first occurrence, in file order, is kept in Products.
	Duplicates map[string]int
}

// Load decodes paths concurrently and merges them in argument order.
func Load(ctx context.Context, paths []string) (*Catalog, error) {
	perFile := make([][]product.Product, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			products, err := ReadFile(path)
			if err != nil {
				return err
			}
			perFile[i] = products
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []product.Product
	for _, products := range perFile {
		all = append(all, products...)
	}
	return merge(all), nil
}

func merge(all []product.Product) *Catalog {
	dups := duplicates(all)
	if len(dups) == 0 {
		return &Catalog{Products: all}
	}

	kept := make([]product.Product, 0, len(all))
	emitted := make(map[string]struct{}, len(dups))
	for _, p := range all {
		if _, dup := dups[p.ID]; dup {
			if _, ok := emitted[p.ID]; ok {
				continue
			}
			emitted[p.ID] = struct{}{}
		}
		kept = append(kept, p)
	}
	return &Catalog{Products: kept, Duplicates: dups}
}

// duplicates returns ids occurring more than once. A bloom filter picks the
// candidates so only those are counted exactly.
func duplicates(all []product.Product) map[string]int {
	filter := bloom.NewWithEstimates(uint(max(len(all), 1)), duplicateFPR)
	candidates := make(map[string]int)
	for _, p := range all {
		if filter.TestAndAddString(p.ID) {
			candidates[p.ID] = 0
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	for _, p := range all {
		if _, ok := candidates[p.ID]; ok {
			candidates[p.ID]++
		}
	}
	for id, n := range candidates {
		if n < 2 {
			delete(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates
}

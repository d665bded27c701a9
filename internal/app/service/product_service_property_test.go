package service

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

func TestProperty_ListProductsPaging(t *testing.T) {
	svc, _, category := setupProductServiceTest(t, nil)
	ctx := context.Background()

	const total = 23
	for i := 0; i < total; i++ {
		_, err := svc.CreateProduct(ctx, ProductInput{
			Name:        fmt.Sprintf("Item %02d", i),
			Description: "Listed item",
			Price:       price(float64(i)),
			CategoryID:  category.ID,
		}, nil)
		require.NoError(t, err)
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("a page never exceeds its limit and the page count is ceil(total/limit)", prop.ForAll(
		func(page, limit int) bool {
			result, err := svc.ListProducts(ProductQuery{Page: &page, Limit: &limit})
			if err != nil {
				return false
			}
			wantPages := (total + limit - 1) / limit
			if len(result.Items) > limit || result.TotalPages != wantPages || result.TotalCount != total {
				return false
			}
			if (page-1)*limit >= total {
				return len(result.Items) == 0
			}
			return len(result.Items) == min(limit, total-(page-1)*limit)
		},
		gen.IntRange(1, 30),
		gen.IntRange(1, 30),
	))

	properties.Property("a page far past the end is empty, never a wrapped-around page", prop.ForAll(
		func(page, limit int) bool {
			result, err := svc.ListProducts(ProductQuery{Page: &page, Limit: &limit})
			return err == nil && len(result.Items) == 0 && result.TotalCount == total
		},
		gen.IntRange(math.MaxInt/2, math.MaxInt-1),
		gen.IntRange(1, 30),
	))

	properties.Property("a price window only returns prices inside it", prop.ForAll(
		func(lo, width float64) bool {
			hi := lo + width
			limit := total
			result, err := svc.ListProducts(ProductQuery{MinPrice: &lo, MaxPrice: &hi, Limit: &limit})
			if err != nil {
				return false
			}
			for _, p := range result.Items {
				if p.Price < lo || p.Price > hi {
					return false
				}
			}
			return int64(len(result.Items)) == result.TotalCount
		},
		gen.Float64Range(0, 30),
		gen.Float64Range(0, 10),
	))

	properties.TestingRun(t)
}

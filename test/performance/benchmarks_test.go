//go:build performance

// Package performance benchmarks the hot paths of the API
package performance

import (
	"context"
	"fmt"
	"net/url"
	"runtime"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/alchemorsel/foodgram/internal/domain/recipe"
	"github.com/alchemorsel/foodgram/internal/domain/relation"
	"github.com/alchemorsel/foodgram/internal/domain/shared"
	"github.com/alchemorsel/foodgram/internal/domain/shopping"
	gormrepo "github.com/alchemorsel/foodgram/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/foodgram/internal/ports/outbound"
	"github.com/alchemorsel/foodgram/test/testutils"
)

// Dataset sizes
const (
	SmallDataset  = 100
	MediumDataset = 1000
)

// PerformanceMetrics holds memory measurements around a benchmark
type PerformanceMetrics struct {
	MemoryBefore runtime.MemStats
	MemoryAfter  runtime.MemStats
}

// NewPerformanceMetrics starts a measurement after a forced GC
func NewPerformanceMetrics() *PerformanceMetrics {
	pm := &PerformanceMetrics{}
	runtime.GC()
	runtime.ReadMemStats(&pm.MemoryBefore)
	return pm
}

// Stop records the final memory state
func (pm *PerformanceMetrics) Stop() {
	runtime.ReadMemStats(&pm.MemoryAfter)
}

// AllocationsPerOp returns heap allocations per operation
func (pm *PerformanceMetrics) AllocationsPerOp(operations int) uint64 {
	if operations == 0 {
		return 0
	}
	return (pm.MemoryAfter.Mallocs - pm.MemoryBefore.Mallocs) / uint64(operations)
}

func cartRows(n int) []shopping.Row {
	faker := gofakeit.New(42)
	units := []string{"г", "мл", "шт", "ст. л."}
	rows := make([]shopping.Row, n)
	for i := range rows {
		rows[i] = shopping.Row{
			Name:   faker.Vegetable(),
			Unit:   units[i%len(units)],
			Amount: int64(faker.Number(1, 500)),
		}
	}
	return rows
}

func BenchmarkShoppingList(b *testing.B) {
	for _, size := range []int{SmallDataset, MediumDataset} {
		rows := cartRows(size)

		b.Run(fmt.Sprintf("AggregateAndRender_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				doc := shopping.NewDocument(shopping.Aggregate(rows))
				if len(doc.Body) == 0 {
					b.Fatal("empty document")
				}
			}
		})
	}
}

func BenchmarkParseFilter(b *testing.B) {
	query := url.Values{
		"tags":                {"breakfast", "lunch", "dinner"},
		"author":              {"me"},
		"is_favorited":        {"1"},
		"is_in_shopping_cart": {"false"},
	}
	viewer := shared.AuthenticatedAs(7)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		filter, err := recipe.ParseFilter(query)
		if err != nil {
			b.Fatal(err)
		}
		if _, err := filter.Resolve(viewer); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRecipeList(b *testing.B) {
	db := testutils.NewSQLiteDB(b)
	fx := testutils.NewFixtures(b, db)

	author := fx.User("author")
	reader := fx.User("reader")
	tag := fx.Tag("Lunch", "lunch")
	ingredients := make([]int64, 10)
	for i := range ingredients {
		ingredients[i] = fx.Ingredient(fmt.Sprintf("ingredient-%02d", i), "g")
	}
	for i := 0; i < SmallDataset; i++ {
		id := fx.Recipe(author, testutils.NewDraftBuilder().
			WithName(fmt.Sprintf("Recipe %03d", i)).
			WithIngredients(
				testutils.Amount(ingredients[i%10], 100),
				testutils.Amount(ingredients[(i+1)%10], 50),
			).
			WithTags(tag).
			Build())
		if i%3 == 0 {
			fx.Relate(relation.KindFavorite, reader, id)
		}
	}

	repo := gormrepo.NewRecipeRepository(db)
	ctx := context.Background()
	viewer := shared.AuthenticatedAs(reader)

	b.Run("FirstPage", func(b *testing.B) {
		metrics := NewPerformanceMetrics()
		for i := 0; i < b.N; i++ {
			if _, _, err := repo.List(ctx, recipe.Criteria{}, viewer, outbound.Page{Limit: 6}); err != nil {
				b.Fatal(err)
			}
		}
		metrics.Stop()
		b.ReportMetric(float64(metrics.AllocationsPerOp(b.N)), "mallocs/op")
	})

	b.Run("FavoritedByTag", func(b *testing.B) {
		criteria := recipe.Criteria{TagSlugs: []string{"lunch"}, IsFavorited: recipe.True}
		start := time.Now()
		for i := 0; i < b.N; i++ {
			if _, _, err := repo.List(ctx, criteria, viewer, outbound.Page{Limit: 6}); err != nil {
				b.Fatal(err)
			}
		}
		b.ReportMetric(float64(time.Since(start).Microseconds())/float64(b.N), "µs/query")
	})
}

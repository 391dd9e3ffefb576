package commands

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/alchemorsel/foodgram/internal/application/catalog"
	gormrepo "github.com/alchemorsel/foodgram/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/foodgram/internal/infrastructure/persistence/memory"
	"github.com/alchemorsel/foodgram/internal/infrastructure/persistence/redis"
	"github.com/alchemorsel/foodgram/internal/ports/inbound"
	"github.com/alchemorsel/foodgram/internal/ports/outbound"
)

// importTimeout bounds a single import run
const importTimeout = 5 * time.Minute

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load catalog entries from CSV",
	Long: `Load ingredients or tags from a CSV file. Rows already stored are
skipped and invalid rows are reported.

File layouts (an optional header row starting with "name" is ignored):
  ingredients  name,measurement_unit
  tags         name,color,slug`,
}

var importIngredientsCmd = &cobra.Command{
	Use:   "ingredients",
	Short: "Import ingredients",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runImport(cmd, func(ctx context.Context, svc inbound.CatalogService, r io.Reader) (*inbound.ImportReport, error) {
			rows, err := readIngredientRows(r)
			if err != nil {
				return nil, err
			}
			return svc.ImportIngredients(ctx, rows)
		})
	},
}

var importTagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Import tags",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runImport(cmd, func(ctx context.Context, svc inbound.CatalogService, r io.Reader) (*inbound.ImportReport, error) {
			rows, err := readTagRows(r)
			if err != nil {
				return nil, err
			}
			return svc.ImportTags(ctx, rows)
		})
	},
}

func init() {
	importCmd.PersistentFlags().StringVarP(&importFile, "file", "f", "", "CSV file to import")
	_ = importCmd.MarkPersistentFlagRequired("file")
	importCmd.AddCommand(importIngredientsCmd, importTagsCmd)
}

type importFunc func(ctx context.Context, svc inbound.CatalogService, r io.Reader) (*inbound.ImportReport, error)

func runImport(cmd *cobra.Command, fn importFunc) error {
	f, err := os.Open(importFile)
	if err != nil {
		return err
	}
	defer f.Close()

	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	db, closeDB, err := env.openDatabase(cmd.Context())
	if err != nil {
		return err
	}
	defer closeDB()

	cache, closeCache := env.catalogCache()
	defer closeCache()

	ctx, cancel := context.WithTimeout(cmd.Context(), importTimeout)
	defer cancel()

	svc := catalogService(env, db, cache)
	report, err := fn(ctx, svc, f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "read %d, created %d, skipped %d, invalid %d\n",
		report.Read, report.Created, report.Skipped, len(report.Invalid))
	for _, problem := range report.Invalid {
		fmt.Fprintln(out, "  "+problem)
	}
	return nil
}

func catalogService(env *environment, db *gorm.DB, cache outbound.CacheRepository) inbound.CatalogService {
	return catalog.NewCatalogService(
		gormrepo.NewIngredientRepository(db),
		gormrepo.NewTagRepository(db),
		cache,
		catalog.CacheTTL{Tags: env.cfg.Cache.TagsTTL, Ingredients: env.cfg.Cache.IngredientsTTL},
		nil,
		env.log,
	)
}

// catalogCache returns the shared Redis cache when enabled so an import
// invalidates what running servers have cached.
func (e *environment) catalogCache() (outbound.CacheRepository, func()) {
	local := memory.NewCacheRepository(0)
	if !e.cfg.Redis.Enabled {
		return local, func() {}
	}
	remote := redis.NewCacheRepository(redis.NewClient(e.cfg.Redis), local, redis.BreakerSettings{
		MaxFailures: e.cfg.Cache.BreakerFailures,
		Timeout:     e.cfg.Cache.BreakerTimeout,
	}, e.log)
	return remote, func() {
		if err := remote.Close(); err != nil {
			e.log.Warn("Failed to close Redis client", zap.Error(err))
		}
	}
}

func readIngredientRows(r io.Reader) ([]inbound.IngredientRow, error) {
	records, err := readRecords(r, 2)
	if err != nil {
		return nil, err
	}
	rows := make([]inbound.IngredientRow, len(records))
	for i, rec := range records {
		rows[i] = inbound.IngredientRow{Name: rec[0], MeasurementUnit: rec[1]}
	}
	return rows, nil
}

func readTagRows(r io.Reader) ([]inbound.TagRow, error) {
	records, err := readRecords(r, 3)
	if err != nil {
		return nil, err
	}
	rows := make([]inbound.TagRow, len(records))
	for i, rec := range records {
		rows[i] = inbound.TagRow{Name: rec[0], Color: rec[1], Slug: rec[2]}
	}
	return rows, nil
}

// readRecords reads every record with exactly fields columns, dropping a
// leading header row.
func readRecords(r io.Reader, fields int) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = fields
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) > 0 && strings.EqualFold(strings.TrimSpace(records[0][0]), "name") {
		records = records[1:]
	}
	return records, nil
}

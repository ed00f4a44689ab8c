package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vsinha/procure/pkg/domain/repositories"
	"github.com/vsinha/procure/pkg/infrastructure/repositories/csv"
)

// SeedFiles names the CSV inputs of a seed run. Empty paths are skipped.
type SeedFiles struct {
	Categories string
	Users      string
	Vendors    string

	skipMissing bool
}

// seedFiles looks for categories.csv, users.csv and vendors.csv in dir.
func seedFiles(dir string) SeedFiles {
	return SeedFiles{
		Categories: filepath.Join(dir, "categories.csv"),
		Users:      filepath.Join(dir, "users.csv"),
		Vendors:    filepath.Join(dir, "vendors.csv"),

		skipMissing: true,
	}
}

type seedCounts struct {
	Categories int
	Users      int
	Vendors    int
}

func (c seedCounts) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("categories", c.Categories)
	enc.AddInt("users", c.Users)
	enc.AddInt("vendors", c.Vendors)
	return nil
}

func newSeedCommand(a *app) *cobra.Command {
	var files SeedFiles
	var dir string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load categories, users and vendors from CSV files",
		Long: `seed loads CSV files into the configured store in a single transaction.
Use --dir to pick up categories.csv, users.csv and vendors.csv from one
directory, or name each file individually.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir != "" {
				files = seedFiles(dir)
			}
			if files == (SeedFiles{}) {
				return fmt.Errorf("nothing to seed: pass --dir or at least one of --categories, --users, --vendors")
			}
			if a.cfg.Storage.Driver == "memory" {
				a.logger.Warn("seeding the memory store; data is discarded when the command exits")
			}

			ctx := cmd.Context()
			rt, err := a.open(ctx, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			counts, err := a.seed(ctx, rt.store, files)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d categories, %d users, %d vendors\n",
				counts.Categories, counts.Users, counts.Vendors)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Directory containing categories.csv, users.csv and vendors.csv")
	cmd.Flags().StringVar(&files.Categories, "categories", "", "Path to categories CSV file")
	cmd.Flags().StringVar(&files.Users, "users", "", "Path to users CSV file")
	cmd.Flags().StringVar(&files.Vendors, "vendors", "", "Path to vendors CSV file")
	return cmd
}

func (a *app) seed(ctx context.Context, store repositories.Store, files SeedFiles) (seedCounts, error) {
	loader := csv.NewLoader()
	data := &csv.SeedData{}
	var err error

	if files.wants(files.Categories) {
		if data.Categories, err = loader.LoadCategories(files.Categories); err != nil {
			return seedCounts{}, err
		}
	}
	if files.wants(files.Users) {
		if data.Users, err = loader.LoadUsers(files.Users); err != nil {
			return seedCounts{}, err
		}
	}
	if files.wants(files.Vendors) {
		if data.Vendors, err = loader.LoadVendors(files.Vendors); err != nil {
			return seedCounts{}, err
		}
	}

	if err := csv.Seed(ctx, store, data, a.clock()); err != nil {
		return seedCounts{}, err
	}
	counts := seedCounts{
		Categories: len(data.Categories),
		Users:      len(data.Users),
		Vendors:    len(data.Vendors),
	}
	a.logger.Debug("seed complete", zap.Object("counts", counts))
	return counts, nil
}

// wants reports whether path should be loaded. Missing files are skipped only
// when they came from a seed directory.
func (f SeedFiles) wants(path string) bool {
	if path == "" {
		return false
	}
	if !f.skipMissing {
		return true
	}
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

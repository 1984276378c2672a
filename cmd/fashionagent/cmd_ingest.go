package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hupe1980/fashionagent/logging"
	"github.com/hupe1980/fashionagent/vectorindex"
)

var ingestConcurrency int

var ingestCmd = &cobra.Command{
	Use:   "ingest [directory]",
	Short: "Embed catalog images and write them to the vector index",
	Long: `Walks the directory for .jpg, .jpeg and .png files, embeds each image
with the configured multimodal embedder and stores it in the configured
index. A sibling .txt file with the same base name is embedded together
with the image as its description. The file name without extension is the
document id.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().IntVar(&ingestConcurrency, "concurrency", 4, "parallel embedding calls")
}

// indexEnsurer creates the index mapping when the backend needs one.
type indexEnsurer interface {
	EnsureIndex(ctx context.Context, dims int) error
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	images, err := readCatalog(args[0])
	if err != nil {
		return err
	}
	if len(images) == 0 {
		return fmt.Errorf("no catalog images found in %s", args[0])
	}

	svc, err := loadServices(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	w, ok := svc.Index.(vectorindex.Writer)
	if !ok {
		return fmt.Errorf("index backend %q does not accept documents", svc.Config.Index.Backend)
	}
	if e, ok := svc.Index.(indexEnsurer); ok {
		if err := e.EnsureIndex(ctx, svc.Embedder.Dimensions()); err != nil {
			return err
		}
	}

	n, err := vectorindex.Ingest(ctx, svc.Embedder, w, images, func(o *vectorindex.IngestOptions) {
		o.Concurrency = ingestConcurrency
		o.Logger = logging.NewZapAdapter(logger)
	})
	logger.Info("Catalog ingested", zap.Int("documents", n), zap.String("index", svc.Index.Name()))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d of %d images into %s\n", n, len(images), svc.Index.Name())
	return nil
}

// readCatalog loads the images below dir.
func readCatalog(dir string) ([]vectorindex.CatalogImage, error) {
	var images []vectorindex.CatalogImage

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		base := strings.TrimSuffix(path, filepath.Ext(path))
		img := vectorindex.CatalogImage{ID: filepath.Base(base), Image: data}
		if desc, err := os.ReadFile(base + ".txt"); err == nil {
			img.Text = strings.TrimSpace(string(desc))
		}
		images = append(images, img)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return images, nil
}

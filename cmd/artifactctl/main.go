// Command artifactctl copies model artifacts into a SQL artifact store and
// lists what a store holds.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"cancerdetect/artifact"
	"cancerdetect/db"
)

const usage = `usage: artifactctl <command> [flags]

commands:
  import   validate artifact files and store them
  list     show stored artifacts`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	flags := flag.NewFlagSet(os.Args[1], flag.ExitOnError)
	driver := flags.String("driver", "sqlite3", "store driver: sqlite3 or postgres")
	dsn := flags.String("dsn", "artifacts.db", "store data source name")
	dir := flags.String("dir", ".", "artifact directory (import)")
	modelFile := flags.String("model", "breast_cancer_model.json", "model artifact (import)")
	scalerFile := flags.String("scaler", "scaler.json", "scaler artifact (import)")
	featuresFile := flags.String("features", "feature_names.json", "feature names artifact (import)")
	flags.Parse(os.Args[2:])

	store, err := db.Open(*driver, *dsn)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch os.Args[1] {
	case "import":
		src := &artifact.FileSource{Dir: *dir, ModelFile: *modelFile, ScalerFile: *scalerFile, FeaturesFile: *featuresFile}
		bundle, err := artifact.Import(ctx, src, store)
		if err != nil {
			log.Fatalf("import failed: %v", err)
		}
		fmt.Printf("imported %d-feature artifacts into %s\n", bundle.Features.Len(), *driver)
	case "list":
		rows, err := store.List(ctx)
		if err != nil {
			log.Fatalf("list failed: %v", err)
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tBYTES\tUPDATED")
		for _, row := range rows {
			fmt.Fprintf(tw, "%s\t%d\t%s\n", row.Name, len(row.Payload), row.UpdatedAt.Format(time.RFC3339))
		}
		tw.Flush()
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
}

// Command detect runs the prediction pipeline over a CSV or XLSX file and
// writes one result row per sample.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"cancerdetect/artifact"
	"cancerdetect/dataset"
	"cancerdetect/ml"
	"cancerdetect/pipeline"
)

func main() {
	input := flag.String("input", "", "CSV or XLSX file with one sample per row")
	output := flag.String("output", "", "output CSV (default stdout)")
	dir := flag.String("artifacts", ".", "artifact directory")
	modelFile := flag.String("model", "breast_cancer_model.json", "model artifact")
	scalerFile := flag.String("scaler", "scaler.json", "scaler artifact")
	featuresFile := flag.String("features", "feature_names.json", "feature names artifact")
	flag.Parse()

	if *input == "" {
		log.Fatal("input is required")
	}

	ctx := context.Background()
	bundle, err := artifact.Load(ctx, &artifact.FileSource{
		Dir:          *dir,
		ModelFile:    *modelFile,
		ScalerFile:   *scalerFile,
		FeaturesFile: *featuresFile,
	})
	if err != nil {
		log.Fatalf("failed to load artifacts: %v", err)
	}
	p, err := pipeline.New(bundle)
	if err != nil {
		log.Fatalf("failed to build pipeline: %v", err)
	}

	samples, err := dataset.ReadFile(*input, bundle.Features)
	if err != nil {
		log.Fatalf("failed to read %s: %v", *input, err)
	}

	var out io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			log.Fatalf("failed to create %s: %v", *output, err)
		}
		defer f.Close()
		out = f
	}

	eval, failed, err := run(ctx, p, samples, out)
	if err != nil {
		log.Fatalf("failed to write results: %v", err)
	}
	log.Printf("processed %d samples, %d failed", len(samples), failed)
	if eval.Samples > 0 {
		log.Printf("accuracy=%.2f precision=%.2f recall=%.2f", eval.Accuracy, eval.Precision, eval.Recall)
	}
}

// run predicts every sample and writes the result table. Samples with a
// known diagnosis feed the returned evaluation.
func run(ctx context.Context, p *pipeline.Pipeline, samples []dataset.Sample, out io.Writer) (dataset.Evaluation, int, error) {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"row", "id", "label", "benign", "malignant", "error"}); err != nil {
		return dataset.Evaluation{}, 0, err
	}

	var actual, predicted []ml.Label
	failed := 0
	for _, sample := range samples {
		record := []string{strconv.Itoa(sample.Row), sample.ID, "", "", "", ""}
		err := sample.Err
		var result *pipeline.Result
		if err == nil {
			result, err = p.Predict(ctx, sample.Values)
		}
		if err != nil {
			failed++
			record[5] = err.Error()
		} else {
			record[2] = result.Label.String()
			record[3] = formatProbability(result.Probabilities.Benign)
			record[4] = formatProbability(result.Probabilities.Malignant)
			if sample.Diagnosis != nil {
				actual = append(actual, *sample.Diagnosis)
				predicted = append(predicted, result.Label)
			}
		}
		if err := w.Write(record); err != nil {
			return dataset.Evaluation{}, failed, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return dataset.Evaluation{}, failed, fmt.Errorf("flush results: %w", err)
	}
	return dataset.Evaluate(actual, predicted), failed, nil
}

func formatProbability(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

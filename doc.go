// Package scisvm is a support vector machine toolkit for tabular data:
// missing-value imputation, feature scaling, train/test splitting, SVM
// training, evaluation, feature importance and prediction.
//
// # Quick Start
//
// The session package runs the whole workflow with explicit state:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/scisvm/dataset"
//	    "github.com/YuminosukeSato/scisvm/preprocessing"
//	    "github.com/YuminosukeSato/scisvm/session"
//	    "github.com/YuminosukeSato/scisvm/training"
//	)
//
//	func main() {
//	    ds, err := dataset.ReadCSVFile("iris.csv")
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    s := session.New()
//	    if err := s.LoadDataset(ds); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    opts := preprocessing.DefaultOptions()
//	    opts.TargetVariable = "species"
//	    opts.Features = []string{"sepal_length", "sepal_width", "petal_length", "petal_width"}
//	    s.SetOptions(opts)
//
//	    cfg := training.DefaultConfig()
//	    cfg.Kernel = "linear"
//	    if err := s.SetConfig(cfg); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    if _, err := s.Preprocess(); err != nil {
//	        log.Fatal(err)
//	    }
//	    if _, err := s.Train(); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    fmt.Println("Accuracy:", s.Metrics().Accuracy)
//	    for _, fi := range s.Importance() {
//	        fmt.Printf("%s: %.3f\n", fi.Feature, fi.Importance)
//	    }
//	}
//
// # Packages
//
//   - dataset: dynamically typed rows, CSV ingestion, dataset summary
//   - preprocessing: imputation, scaling, train/test split, k-fold, pipeline
//   - svm: SMO-based C-SVC backend with linear, rbf, polynomial and sigmoid kernels
//   - training: SVM configuration, label encoding, trainer, cross-validation, model bundles
//   - metrics: accuracy, confusion matrix, precision, recall, F1
//   - inspection: feature importance for linear kernels
//   - inference: single and batch prediction
//   - session: explicit workflow state
//   - config: YAML run configuration
//   - core/model: classifier interfaces, fitted state, persistence
//   - core/parallel: parallel processing utilities
//   - pkg/errors, pkg/log: structured errors and logging
//
// # Label Encoding
//
// String labels are encoded as the code point of their first character, so
// "versicolor" and "virginica" share a class. Such collisions are reported as
// a LabelCollisionWarning and kept as they are.
//
// # Performance
//
// Gram matrix rows and batch predictions are computed in parallel; every
// other stage is a single blocking call.
package scisvm

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/YuminosukeSato/scisvm/session"
	"github.com/YuminosukeSato/scisvm/training"
)

// reportPlaces is the number of decimal places kept in reports.
const reportPlaces = 4

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

func round(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(reportPlaces)
}

type classReport struct {
	Label     string          `json:"label"`
	Code      int             `json:"code"`
	Precision decimal.Decimal `json:"precision"`
	Recall    decimal.Decimal `json:"recall"`
	F1        decimal.Decimal `json:"f1"`
	Support   int             `json:"support"`
}

type importanceReport struct {
	Feature    string          `json:"feature"`
	Importance decimal.Decimal `json:"importance"`
}

type report struct {
	ModelID           string             `json:"modelId"`
	Dataset           string             `json:"dataset"`
	Config            training.Config    `json:"config"`
	TrainingSamples   int                `json:"trainingSamples"`
	TestingSamples    int                `json:"testingSamples"`
	RemovedRows       int                `json:"removedRows"`
	TrainingMs        int64              `json:"trainingMs"`
	Accuracy          *decimal.Decimal   `json:"accuracy,omitempty"`
	MacroF1           *decimal.Decimal   `json:"macroF1,omitempty"`
	Classes           []classReport      `json:"classes,omitempty"`
	ConfusionMatrix   [][]int            `json:"confusionMatrix,omitempty"`
	CrossValidation   []decimal.Decimal  `json:"crossValidation,omitempty"`
	FeatureImportance []importanceReport `json:"featureImportance"`
	LabelCollisions   []int              `json:"labelCollisions,omitempty"`
}

func newReport(name string, s *session.Session) *report {
	m := s.Model()
	processed := s.Processed()
	r := &report{
		ModelID:         m.ID,
		Dataset:         name,
		Config:          m.Config,
		TrainingSamples: len(processed.Split.TrainingData),
		TestingSamples:  len(processed.Split.TestingData),
		RemovedRows:     processed.Removed,
		TrainingMs:      m.Duration.Milliseconds(),
		LabelCollisions: m.Codec.Collisions(),
	}

	if mm := s.Metrics(); mm != nil {
		acc, f1 := round(mm.Accuracy), round(mm.MacroF1)
		r.Accuracy, r.MacroF1 = &acc, &f1
		r.ConfusionMatrix = mm.ConfusionMatrix
		for j, code := range mm.Classes {
			r.Classes = append(r.Classes, classReport{
				Label:     mm.ClassLabels[j].String(),
				Code:      code,
				Precision: round(mm.Precision[j]),
				Recall:    round(mm.Recall[j]),
				F1:        round(mm.F1Score[j]),
				Support:   mm.Support[j],
			})
		}
		for _, score := range mm.CrossValidation {
			r.CrossValidation = append(r.CrossValidation, round(score))
		}
	}

	for _, fi := range s.Importance() {
		r.FeatureImportance = append(r.FeatureImportance, importanceReport{
			Feature:    fi.Feature,
			Importance: round(fi.Importance),
		})
	}
	return r
}

var (
	cyan   = color.New(color.FgCyan).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
)

func scoreColor(v decimal.Decimal) func(a ...interface{}) string {
	switch {
	case v.GreaterThanOrEqual(decimal.NewFromFloat(0.9)):
		return green
	case v.GreaterThanOrEqual(decimal.NewFromFloat(0.7)):
		return yellow
	default:
		return red
	}
}

func printReport(w io.Writer, r *report) {
	fmt.Fprintln(w, cyan(fmt.Sprintf("Model %s (%s kernel)", r.ModelID, r.Config.Kernel)))
	fmt.Fprintf(w, "  training rows: %d  testing rows: %d  removed rows: %d  training time: %dms\n",
		r.TrainingSamples, r.TestingSamples, r.RemovedRows, r.TrainingMs)

	if r.Accuracy != nil {
		fmt.Fprintf(w, "  accuracy: %s  macro F1: %s\n",
			scoreColor(*r.Accuracy)(r.Accuracy.StringFixed(reportPlaces)),
			scoreColor(*r.MacroF1)(r.MacroF1.StringFixed(reportPlaces)))

		fmt.Fprintln(w, cyan("\nPer class:"))
		fmt.Fprintf(w, "  %-12s %10s %10s %10s %8s\n", "class", "precision", "recall", "f1", "support")
		for _, c := range r.Classes {
			fmt.Fprintf(w, "  %-12s %10s %10s %10s %8d\n", c.Label,
				c.Precision.StringFixed(reportPlaces), c.Recall.StringFixed(reportPlaces),
				c.F1.StringFixed(reportPlaces), c.Support)
		}

		fmt.Fprintln(w, cyan("\nConfusion matrix (rows: true, columns: predicted):"))
		header := make([]string, len(r.Classes))
		for i, c := range r.Classes {
			header[i] = fmt.Sprintf("%8s", c.Label)
		}
		fmt.Fprintf(w, "  %-12s%s\n", "", strings.Join(header, ""))
		for i, row := range r.ConfusionMatrix {
			cells := make([]string, len(row))
			for j, v := range row {
				cells[j] = fmt.Sprintf("%8d", v)
			}
			fmt.Fprintf(w, "  %-12s%s\n", r.Classes[i].Label, strings.Join(cells, ""))
		}
	} else {
		fmt.Fprintln(w, yellow("  no testing rows: metrics skipped"))
	}

	if len(r.CrossValidation) > 0 {
		scores := make([]string, len(r.CrossValidation))
		for i, s := range r.CrossValidation {
			scores[i] = s.StringFixed(reportPlaces)
		}
		fmt.Fprintf(w, "%s %s\n", cyan("\nCross-validation accuracy:"), strings.Join(scores, " "))
	}

	fmt.Fprintln(w, cyan("\nFeature importance:"))
	for _, fi := range r.FeatureImportance {
		fmt.Fprintf(w, "  %-20s %s\n", fi.Feature, fi.Importance.StringFixed(reportPlaces))
	}
	if len(r.LabelCollisions) > 0 {
		fmt.Fprintln(w, red(fmt.Sprintf("\nWarning: %d label codes are shared by different labels", len(r.LabelCollisions))))
	}
}

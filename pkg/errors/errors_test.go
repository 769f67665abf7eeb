package errors

import (
	"fmt"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name    string
		op      string
		kind    string
		err     error
		wantMsg string
	}{
		{
			name:    "with cause",
			op:      "Train",
			kind:    "training failed",
			err:     fmt.Errorf("solver exploded"),
			wantMsg: "scisvm: Train: training failed: solver exploded",
		},
		{
			name:    "without cause",
			op:      "Evaluate",
			kind:    "empty test set",
			wantMsg: "scisvm: Evaluate: empty test set",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// the stack must point back at the caller
			formatted := fmt.Sprintf("%+v", err)
			if !strings.Contains(formatted, "errors_test.go") {
				t.Error("expected stack trace to contain test file name")
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Fatal("error should be castable to *ModelError")
			}
			if tt.err != nil && !Is(err, tt.err) {
				t.Error("cause should be reachable through Unwrap")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	tests := []struct {
		axis int
		want string
	}{
		{0, "scisvm: Evaluate: dimension mismatch on axis 0 (rows). Expected 10, got 8"},
		{1, "scisvm: Evaluate: dimension mismatch on axis 1 (features). Expected 10, got 8"},
	}
	for _, tt := range tests {
		err := NewDimensionError("Evaluate", 10, 8, tt.axis)
		if err.Error() != tt.want {
			t.Errorf("Error() = %v, want %v", err.Error(), tt.want)
		}
		var dimErr *DimensionError
		if !As(err, &dimErr) {
			t.Error("error should be castable to *DimensionError")
		}
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("SVC", "Predict")

	want := "scisvm: SVC: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("error should be castable to *NotFittedError")
	}
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("test_ratio", "must be in (0, 1)", 1.5)

	want := "scisvm: validation failed for parameter 'test_ratio': must be in (0, 1) (got: 1.5)"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var valErr *ValidationError
	if !As(err, &valErr) {
		t.Fatal("error should be castable to *ValidationError")
	}
	if valErr.ParamName != "test_ratio" {
		t.Errorf("ParamName = %q, want test_ratio", valErr.ParamName)
	}
}

func TestNewValueError(t *testing.T) {
	err := NewValueError("LabelCodec.Encode", "empty label")
	want := "scisvm: LabelCodec.Encode: empty label"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}
}

func TestWarnings(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(w error) {})

	Warn(NewLabelCollisionWarning(97, []string{"apple", "avocado"}))
	Warn(NewConvergenceWarning("smo", 1000, ""))

	if len(got) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(got))
	}
	if !strings.Contains(got[0].Error(), "share code 97") {
		t.Errorf("unexpected collision message %q", got[0].Error())
	}
	if got[1].Error() != "smo failed to converge after 1000 iterations" {
		t.Errorf("unexpected convergence message %q", got[1].Error())
	}
}

func TestZerologWarnFuncTakesPrecedence(t *testing.T) {
	var handler, structured int
	SetWarningHandler(func(w error) { handler++ })
	SetZerologWarnFunc(func(w error) { structured++ })
	defer func() {
		SetZerologWarnFunc(nil)
		SetWarningHandler(func(w error) {})
	}()

	Warn(NewConvergenceWarning("smo", 10, "tolerance not reached"))

	if structured != 1 || handler != 0 {
		t.Errorf("structured=%d handler=%d, want 1 and 0", structured, handler)
	}
}

func TestSafeDivide(t *testing.T) {
	tests := []struct {
		num, den, want float64
	}{
		{1, 2, 0.5},
		{1, 0, 0},
		{3, 1e-15, 3e15},
		{2e-13, 4e-13, 0.5},
		{-4, 2, -2},
	}
	for _, tt := range tests {
		if got := SafeDivide(tt.num, tt.den); got != tt.want {
			t.Errorf("SafeDivide(%v, %v) = %v, want %v", tt.num, tt.den, got, tt.want)
		}
	}
}

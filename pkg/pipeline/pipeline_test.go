package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/charmbracelet/log"

	dperrors "github.com/depexplain/depexplain/pkg/errors"
	"github.com/depexplain/depexplain/pkg/explain"
)

const conflicting = `# training stack
pytorch-lightning==2.0.0
torch==1.13.0
requests>=2.28
`

func newTestRunner() *Runner {
	logger := log.New(os.Stderr)
	logger.SetLevel(log.ErrorLevel)
	return NewRunner(nil, nil, logger)
}

func TestValidateOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "content only", opts: Options{Content: "requests\n"}},
		{name: "path only", opts: Options{Path: "reqs.txt"}},
		{name: "neither", opts: Options{}, wantErr: true},
		{name: "both", opts: Options{Content: "requests\n", Path: "reqs.txt"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && tt.opts.Input == "" {
				t.Error("input name not defaulted")
			}
		})
	}
}

func TestExecute(t *testing.T) {
	runner := newTestRunner()

	result, err := runner.Execute(context.Background(), Options{Content: conflicting})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Compatible() {
		t.Error("expected a conflict")
	}
	if len(result.Findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(result.Findings))
	}
	if len(result.Explanations) != len(result.Findings) {
		t.Fatalf("explanations = %d, want %d", len(result.Explanations), len(result.Findings))
	}
	if result.Explanations[0].Source != explain.SourceTemplate {
		t.Errorf("source = %q, want template", result.Explanations[0].Source)
	}
	if result.Stats.Requirements != 3 {
		t.Errorf("stats requirements = %d, want 3", result.Stats.Requirements)
	}
	if result.Stats.Findings != 1 {
		t.Errorf("stats findings = %d, want 1", result.Stats.Findings)
	}
	if result.Input != "requirements.txt" {
		t.Errorf("input = %q", result.Input)
	}
}

func TestExecuteNoExplain(t *testing.T) {
	runner := newTestRunner()

	result, err := runner.Execute(context.Background(), Options{Content: conflicting, NoExplain: true})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(result.Findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(result.Findings))
	}
	if len(result.Explanations) != 0 {
		t.Errorf("explanations = %d, want 0", len(result.Explanations))
	}
}

func TestExecuteCompatible(t *testing.T) {
	runner := newTestRunner()

	result, err := runner.Execute(context.Background(), Options{Content: "requests>=2.28\nflask==2.3.0\n"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !result.Compatible() {
		t.Errorf("unexpected findings: %+v", result.Findings)
	}
}

func TestExecuteFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requirements.txt")
	if err := os.WriteFile(path, []byte(conflicting), 0o644); err != nil {
		t.Fatal(err)
	}
	runner := newTestRunner()

	result, err := runner.Execute(context.Background(), Options{Path: path})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Input != path {
		t.Errorf("input = %q, want %q", result.Input, path)
	}
	if len(result.Findings) != 1 {
		t.Errorf("findings = %d, want 1", len(result.Findings))
	}
}

func TestExecuteMissingFile(t *testing.T) {
	runner := newTestRunner()

	_, err := runner.Execute(context.Background(), Options{Path: filepath.Join(t.TempDir(), "nope.txt")})
	if err == nil {
		t.Fatal("expected error")
	}
	if dperrors.GetCode(err) != dperrors.ErrCodeFileNotFound {
		t.Errorf("code = %v, want file not found", dperrors.GetCode(err))
	}
}

// Running the same input twice must produce identical findings and
// explanations when no remote provider is involved.
func TestExecuteDeterministic(t *testing.T) {
	runner := newTestRunner()

	first, err := runner.Execute(context.Background(), Options{Content: conflicting})
	if err != nil {
		t.Fatal(err)
	}
	second, err := runner.Execute(context.Background(), Options{Content: conflicting})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.Findings, second.Findings) {
		t.Error("findings differ between runs")
	}
	if !reflect.DeepEqual(first.Explanations, second.Explanations) {
		t.Error("explanations differ between runs")
	}
}

func TestExecuteOversizedInput(t *testing.T) {
	runner := newTestRunner()

	big := make([]byte, MaxInputSize+1)
	for i := range big {
		big[i] = 'a'
	}
	_, err := runner.Execute(context.Background(), Options{Content: string(big)})
	if err == nil {
		t.Fatal("expected error for oversized input")
	}
	if dperrors.GetCode(err) != dperrors.ErrCodeInvalidInput {
		t.Errorf("code = %v, want invalid input", dperrors.GetCode(err))
	}
}

func TestExecuteOversizedFile(t *testing.T) {
	runner := newTestRunner()

	big := make([]byte, MaxInputSize+1)
	for i := range big {
		big[i] = '\n'
	}
	path := filepath.Join(t.TempDir(), "requirements.txt")
	if err := os.WriteFile(path, big, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := runner.Execute(context.Background(), Options{Path: path})
	if err == nil {
		t.Fatal("expected error for oversized file")
	}
	if dperrors.GetCode(err) != dperrors.ErrCodeInvalidInput {
		t.Errorf("code = %v, want invalid input", dperrors.GetCode(err))
	}
}

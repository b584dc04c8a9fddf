package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/iterkit/errors"
)

type engineSettings struct {
	Depth    int           `mapstructure:"depth" validate:"gte=2"`
	Every    int           `mapstructure:"callback_every" validate:"gte=0"`
	Grace    time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
	Endpoint string        `mapstructure:"endpoint" validate:"omitempty,hostname_port"`
}

type pipelineSettings struct {
	Name     string         `json:"name" validate:"required"`
	Prefetch engineSettings `mapstructure:"prefetch"`
	Ratios   []float64      `mapstructure:"ratios" validate:"dive,gt=0,lt=1"`
	Mode     string         `validate:"omitempty,oneof=sync async"`
}

func validSettings() pipelineSettings {
	return pipelineSettings{
		Name:     "bench",
		Prefetch: engineSettings{Depth: 4, Grace: time.Second},
		Ratios:   []float64{0.7, 0.3},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*pipelineSettings)
		wantField string
		wantMsg   string
	}{
		{"valid", func(*pipelineSettings) {}, "", ""},
		{"missing name", func(s *pipelineSettings) { s.Name = "" }, "name", "is required"},
		{"depth too small", func(s *pipelineSettings) { s.Prefetch.Depth = 1 }, "prefetch.depth", "greater than or equal to 2"},
		{"negative cadence", func(s *pipelineSettings) { s.Prefetch.Every = -1 }, "prefetch.callback_every", "greater than or equal to 0"},
		{"ratio out of range", func(s *pipelineSettings) { s.Ratios = []float64{1.5} }, "ratios[0]", "less than 1"},
		{"zero ratio", func(s *pipelineSettings) { s.Ratios = []float64{0} }, "ratios[0]", "greater than 0"},
		{"bad endpoint", func(s *pipelineSettings) { s.Prefetch.Endpoint = "not an address" }, "prefetch.endpoint", "host:port"},
		{"bad mode", func(s *pipelineSettings) { s.Mode = "eager" }, "mode", "one of"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := validSettings()
			tc.mutate(&s)
			err := Validate(s)
			if tc.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, errors.ErrCodeConfiguration) {
				t.Fatalf("expected CONFIGURATION_ERROR, got %v", err)
			}
			appErr, _ := errors.AsAppError(err)
			fields, ok := appErr.Details["fields"].([]FieldError)
			if !ok || len(fields) != 1 {
				t.Fatalf("expected one field error, got %v", appErr.Details["fields"])
			}
			if fields[0].Field != tc.wantField {
				t.Errorf("field = %q, want %q", fields[0].Field, tc.wantField)
			}
			if !strings.Contains(fields[0].Message, tc.wantMsg) {
				t.Errorf("message = %q, want it to contain %q", fields[0].Message, tc.wantMsg)
			}
		})
	}
}

func TestValidate_CollectsAllFields(t *testing.T) {
	s := validSettings()
	s.Name = ""
	s.Prefetch.Depth = 0
	err := Validate(s)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "name: is required") || !strings.Contains(err.Error(), "prefetch.depth") {
		t.Errorf("expected both fields in the message, got %q", err.Error())
	}
}

func TestValidate_NonStruct(t *testing.T) {
	if err := Validate(42); !errors.Is(err, errors.ErrCodeConfiguration) {
		t.Errorf("expected CONFIGURATION_ERROR for a non-struct, got %v", err)
	}
}

func TestValidator(t *testing.T) {
	tests := []struct {
		name  string
		check func(v *Validator)
		want  int
	}{
		{"required ok", func(v *Validator) { v.Required("name", "x") }, 0},
		{"required blank", func(v *Validator) { v.Required("name", "  ") }, 1},
		{"range ok", func(v *Validator) { v.Range("depth", 4, 2, 8) }, 0},
		{"range low", func(v *Validator) { v.Range("depth", 1, 2, 8) }, 1},
		{"range high", func(v *Validator) { v.Range("depth", 9, 2, 8) }, 1},
		{"min", func(v *Validator) { v.Min("total", -1, 0) }, 1},
		{"open unit ok", func(v *Validator) { v.OpenUnit("ratios", []float64{0.7, 0.3}) }, 0},
		{"open unit bounds", func(v *Validator) { v.OpenUnit("ratios", []float64{0, 1, 0.5}) }, 2},
		{"sum ok", func(v *Validator) { v.MaxSum("ratios", []float64{0.7, 0.3}, 1, 1e-9) }, 0},
		{"sum over", func(v *Validator) { v.MaxSum("ratios", []float64{0.7, 0.4}, 1, 1e-9) }, 1},
		{"one of ok", func(v *Validator) { v.OneOf("env", "staging", []string{"development", "staging"}) }, 0},
		{"one of empty skipped", func(v *Validator) { v.OneOf("env", "", []string{"development"}) }, 0},
		{"one of bad", func(v *Validator) { v.OneOf("env", "qa", []string{"development"}) }, 1},
		{"custom", func(v *Validator) { v.Custom(false, "split", "ratios and counts are exclusive") }, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := New()
			tc.check(v)
			if len(v.Errors()) != tc.want {
				t.Errorf("got %d errors %v, want %d", len(v.Errors()), v.Errors(), tc.want)
			}
			if (v.Validate() != nil) != (tc.want > 0) {
				t.Errorf("Validate() mismatch for %d errors", tc.want)
			}
		})
	}
}

func TestValidatorChainedMessage(t *testing.T) {
	appErr := New().
		Min("split.total", -5, 0).
		Custom(false, "split", "ratios and counts are exclusive").
		Validate()
	if appErr == nil {
		t.Fatal("expected error")
	}
	if appErr.Code != errors.ErrCodeConfiguration {
		t.Errorf("expected CONFIGURATION_ERROR, got %s", appErr.Code)
	}
	want := "split.total: must be at least 0; split: ratios and counts are exclusive"
	if appErr.Message != want {
		t.Errorf("message = %q, want %q", appErr.Message, want)
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Depth":           "depth",
		"ShutdownTimeout": "shutdown_timeout",
		"ID":              "i_d",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}

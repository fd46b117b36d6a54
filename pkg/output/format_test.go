package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iwvelando/lead-intake/pkg/affordability"
	"github.com/iwvelando/lead-intake/pkg/format"
)

func sampleResults() []Result {
	return []Result{
		{
			Name: "Ana Lopez",
			Analysis: affordability.FinancialAnalysis{
				TotalMonthlyIncome:     5000,
				TotalMonthlyDebts:      800,
				MaxPaymentConventional: 1550,
				MaxPaymentFHA:          1850,
				DTIConventional:        0.47,
				DTIFHA:                 0.53,
			},
		},
		{
			Name: `Sam "The Hammer" Lee`,
			Analysis: affordability.FinancialAnalysis{
				TotalMonthlyIncome: 1000,
				TotalMonthlyDebts:  2000,
				DTIConventional:    0.47,
				DTIFHA:             0.53,
			},
			Warnings: []string{"first warning", "second warning"},
		},
	}
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	PrettyFormat(&buf, nil, sampleResults())
	output := buf.String()

	expected := []string{
		"--- Affordability for Ana Lopez ---",
		"Qualifying monthly income | $ 5,000.00",
		"Monthly debts             | $ 800.00",
		"Conventional (47% DTI)     | $ 1,550.00",
		"FHA (53% DTI)              | $ 1,850.00",
		"Warnings:",
		"  - second warning",
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyFormat output missing %q:\n%s", want, output)
		}
	}
}

func TestPrettyFormatUsesFormatterLocale(t *testing.T) {
	f, err := format.ParseFormatter("en-GB", "USD")
	if err != nil {
		t.Fatalf("ParseFormatter() error = %v", err)
	}

	var buf bytes.Buffer
	PrettyFormat(&buf, f, sampleResults()[:1])
	output := buf.String()

	for _, want := range []string{
		"Qualifying monthly income | US$ 5,000.00",
		"Monthly debts             | US$ 800.00",
		"FHA (53% DTI)              | US$ 1,850.00",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyFormat output missing %q:\n%s", want, output)
		}
	}
}

func TestPrettyFormatEmptyResults(t *testing.T) {
	var buf bytes.Buffer
	PrettyFormat(&buf, nil, nil)
	if buf.Len() != 0 {
		t.Errorf("expected no output for empty results, got %q", buf.String())
	}
}

func TestCsvFormat(t *testing.T) {
	var buf bytes.Buffer
	CsvFormat(&buf, sampleResults())
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")

	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], `"name","total monthly income"`) {
		t.Errorf("unexpected CSV header %q", lines[0])
	}
	if lines[1] != `"Ana Lopez","5000.00","800.00","1550.00","1850.00","0.47","0.53",""` {
		t.Errorf("unexpected CSV row %q", lines[1])
	}
	if !strings.Contains(lines[2], `"Sam ""The Hammer"" Lee"`) {
		t.Errorf("CSV row did not escape quotes: %q", lines[2])
	}
	if !strings.Contains(lines[2], `"first warning; second warning"`) {
		t.Errorf("CSV row missing joined warnings: %q", lines[2])
	}
}

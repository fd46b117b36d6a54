// Package output provides utilities for formatting and displaying affordability results.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/lead-intake/pkg/affordability"
	"github.com/iwvelando/lead-intake/pkg/format"
)

// Result is one applicant's analysis plus any non-blocking warnings.
type Result struct {
	Name     string
	Analysis affordability.FinancialAnalysis
	Warnings []string
}

// PrettyFormat writes a human-readable rather than machine-readable summary.
// Amounts are rendered by f; a nil f uses format.Default.
func PrettyFormat(w io.Writer, f *format.Formatter, results []Result) {
	if f == nil {
		f = format.Default()
	}
	for i, result := range results {
		a := result.Analysis
		fmt.Fprintf(w, "--- Affordability for %s ---\n", result.Name)
		fmt.Fprintf(w, "Qualifying monthly income | %s\n", f.Currency(a.TotalMonthlyIncome))
		fmt.Fprintf(w, "Monthly debts             | %s\n", f.Currency(a.TotalMonthlyDebts))
		fmt.Fprintf(w, "Conventional (%s DTI)     | %s\n", f.Percent(a.DTIConventional), f.Currency(a.MaxPaymentConventional))
		fmt.Fprintf(w, "FHA (%s DTI)              | %s\n", f.Percent(a.DTIFHA), f.Currency(a.MaxPaymentFHA))
		if len(result.Warnings) > 0 {
			fmt.Fprintf(w, "Warnings:\n")
			for _, warning := range result.Warnings {
				fmt.Fprintf(w, "  - %s\n", warning)
			}
		}
		if i < len(results)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
}

// CsvFormat writes one row per result in comma-separated value format.
func CsvFormat(w io.Writer, results []Result) {
	fmt.Fprintf(w, `"name","total monthly income","total monthly debts","max payment conventional","max payment fha","dti conventional","dti fha","warnings"`)
	fmt.Fprintf(w, "\n")
	for _, result := range results {
		a := result.Analysis
		fmt.Fprintf(w, `"%s","%.2f","%.2f","%.2f","%.2f","%g","%g","%s"`,
			csvEscape(result.Name), a.TotalMonthlyIncome, a.TotalMonthlyDebts,
			a.MaxPaymentConventional, a.MaxPaymentFHA, a.DTIConventional, a.DTIFHA,
			csvEscape(strings.Join(result.Warnings, "; ")))
		fmt.Fprintf(w, "\n")
	}
}

func csvEscape(value string) string {
	return strings.ReplaceAll(value, `"`, `""`)
}

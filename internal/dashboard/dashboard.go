// Package dashboard renders the HTML overview page.
package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/carwashpos/backend/internal/reports"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var page = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

type saleRow struct {
	ID        int64
	Total     string
	Timestamp string
}

type customerRow struct {
	ID    int64
	Name  string
	Phone string
}

type view struct {
	Counts          reports.Counts
	Labels          []string
	Values          []float64
	RecentSales     []saleRow
	RecentCustomers []customerRow
}

// Render writes the dashboard page for summary.
func Render(w io.Writer, summary *reports.Summary) error {
	if summary == nil {
		return fmt.Errorf("summary required")
	}
	v := view{
		Counts: summary.Counts,
		Labels: make([]string, 0, len(summary.Series)),
		Values: make([]float64, 0, len(summary.Series)),
	}
	for _, day := range summary.Series {
		v.Labels = append(v.Labels, day.Date)
		v.Values = append(v.Values, day.Total.InexactFloat64())
	}
	for _, sale := range summary.RecentSales {
		v.RecentSales = append(v.RecentSales, saleRow{
			ID:        sale.ID,
			Total:     sale.Total.StringFixed(0),
			Timestamp: sale.Timestamp.UTC().Format("2006-01-02 15:04"),
		})
	}
	for _, c := range summary.RecentCustomers {
		row := customerRow{ID: c.ID, Name: c.Name}
		if c.Phone != nil {
			row.Phone = *c.Phone
		}
		v.RecentCustomers = append(v.RecentCustomers, row)
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, v); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

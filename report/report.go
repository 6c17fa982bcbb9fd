package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/TFMV/randcsv/metrics"
	"github.com/TFMV/randcsv/pkg/core"
	"github.com/TFMV/randcsv/validation"
)

// Inspection is the outcome of inspecting one generated file.
type Inspection struct {
	Path      string              `json:"path"`
	Format    string              `json:"format"`
	Time      time.Time           `json:"time"`
	Shape     metrics.ShapeResult `json:"shape"`
	Result    validation.Result   `json:"result"`
	DataTypes []string            `json:"data_types"`
}

// NewInspection builds an Inspection of table read from path.
func NewInspection(path, format string, table *core.Table, res validation.Result, types []core.DataType) Inspection {
	run := Inspection{
		Path:   path,
		Format: format,
		Time:   time.Now().UTC(),
		Shape: metrics.ShapeResult{
			Rows:     table.NumRows(),
			Cols:     table.Cols,
			DataRows: len(table.DataRows()),
			Header:   table.Header,
			Index:    table.Index,
		},
		Result: res,
	}
	for _, dt := range types {
		run.DataTypes = append(run.DataTypes, dt.String())
	}
	return run
}

// -----------------------------
// Report Generator Interfaces
// -----------------------------

// ReportGenerator defines the methods for generating reports.
type ReportGenerator interface {
	GenerateInspectionReport(run Inspection) ([]byte, error)
	GenerateAlertNotification(run Inspection) ([]byte, error)
	SaveReportToFile(run Inspection, filePath string) error
}

// ForFormat returns the generator for a report format: text, json or html.
func ForFormat(format string) (ReportGenerator, error) {
	switch strings.ToLower(format) {
	case "text", "":
		return &TextReportGenerator{}, nil
	case "json":
		return &JSONReportGenerator{}, nil
	case "html":
		return &HTMLReportGenerator{}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported report format %q, must be one of: text, json, html",
			core.ErrInvalidArgument, format)
	}
}

func failedChecks(run Inspection) []string {
	var failed []string
	for _, c := range run.Result.Checks {
		if !c.Status {
			failed = append(failed, c.Name)
		}
	}
	return failed
}

func statusText(ok bool) string {
	if ok {
		return "PASS"
	}
	return "FAIL"
}

// -----------------------------
// Text Report Generator
// -----------------------------

// TextReportGenerator generates plain text reports for terminals.
type TextReportGenerator struct{}

// GenerateInspectionReport renders the inspection as aligned text.
func (g *TextReportGenerator) GenerateInspectionReport(run Inspection) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "File:    %s (%s)\n", run.Path, run.Format)
	fmt.Fprintf(&buf, "Shape:   %d rows x %d cols (header: %t, index: %t)\n",
		run.Shape.Rows, run.Shape.Cols, run.Shape.Header, run.Shape.Index)
	cells := run.Result.Cells
	fmt.Fprintf(&buf, "Cells:   %d (str %d, int %d, float %d, nan %d, empty %d)\n",
		cells.Total, cells.String, cells.Integer, cells.Float, cells.NaN, cells.Empty)
	fr := run.Result.Frequencies
	fmt.Fprintf(&buf, "NaN:     %.4f (target %.4f)\n", fr.RealizedNaN, fr.TargetNaN)
	fmt.Fprintf(&buf, "Empty:   %.4f (target %.4f)\n\n", fr.RealizedEmpty, fr.TargetEmpty)

	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECK\tSTATUS\tFAILURES")
	for _, c := range run.Result.Checks {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c.Name, statusText(c.Status), c.Failures)
	}
	if err := tw.Flush(); err != nil {
		return nil, err
	}
	for _, c := range run.Result.Checks {
		for _, issue := range c.Issues {
			fmt.Fprintf(&buf, "  %s: %s\n", c.Name, issue)
		}
	}
	fmt.Fprintf(&buf, "\nResult:  %s\n", statusText(run.Result.Passed))
	return buf.Bytes(), nil
}

// GenerateAlertNotification generates a one-line alert.
func (g *TextReportGenerator) GenerateAlertNotification(run Inspection) ([]byte, error) {
	return []byte(fmt.Sprintf("Validation failed for %s: %s\n",
		run.Path, strings.Join(failedChecks(run), ", "))), nil
}

// SaveReportToFile saves the text report to a file.
func (g *TextReportGenerator) SaveReportToFile(run Inspection, filePath string) error {
	data, err := g.GenerateInspectionReport(run)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}

// -----------------------------
// JSON Report Generator
// -----------------------------

// JSONReportGenerator generates JSON reports.
type JSONReportGenerator struct{}

// GenerateInspectionReport serializes the Inspection to JSON.
func (j *JSONReportGenerator) GenerateInspectionReport(run Inspection) ([]byte, error) {
	return json.MarshalIndent(run, "", "  ")
}

// GenerateAlertNotification generates an alert message in JSON format.
func (j *JSONReportGenerator) GenerateAlertNotification(run Inspection) ([]byte, error) {
	alert := map[string]interface{}{
		"alert":     "Validation Failed",
		"path":      run.Path,
		"failed":    failedChecks(run),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	return json.MarshalIndent(alert, "", "  ")
}

// SaveReportToFile saves the JSON report to a file.
func (j *JSONReportGenerator) SaveReportToFile(run Inspection, filePath string) error {
	data, err := j.GenerateInspectionReport(run)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}

// ReportFromFilePath loads a JSON report saved by SaveReportToFile.
func ReportFromFilePath(filePath string) (Inspection, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return Inspection{}, err
	}
	var run Inspection
	if err := json.Unmarshal(data, &run); err != nil {
		return Inspection{}, err
	}
	return run, nil
}

// -----------------------------
// HTML Report Generator
// -----------------------------

// HTMLReportGenerator generates HTML reports.
type HTMLReportGenerator struct{}

// HTML template for the report.
const htmlTemplate = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Inspection Report</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        table { width: 100%; border-collapse: collapse; margin-top: 20px; }
        th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
        th { background-color: #f4f4f4; }
        .status-pass { color: green; }
        .status-fail { color: red; }
    </style>
</head>
<body>
    <h1>Inspection Report</h1>
    <p><strong>File:</strong> {{.Path}} ({{.Format}})</p>
    <p><strong>Shape:</strong> {{.Shape.Rows}} rows x {{.Shape.Cols}} cols</p>
    <p><strong>Header:</strong> {{.Shape.Header}} <strong>Index:</strong> {{.Shape.Index}}</p>
    <p><strong>Result:</strong> {{if .Result.Passed}}<span class="status-pass">PASS</span>{{else}}<span class="status-fail">FAIL</span>{{end}}</p>

    <h2>Cells</h2>
    <table>
        <tr>
            <th>Total</th>
            <th>String</th>
            <th>Integer</th>
            <th>Float</th>
            <th>NaN</th>
            <th>Empty</th>
        </tr>
        <tr>
            <td>{{.Result.Cells.Total}}</td>
            <td>{{.Result.Cells.String}}</td>
            <td>{{.Result.Cells.Integer}}</td>
            <td>{{.Result.Cells.Float}}</td>
            <td>{{.Result.Cells.NaN}}</td>
            <td>{{.Result.Cells.Empty}}</td>
        </tr>
    </table>

    <h2>Missing Values</h2>
    <table>
        <tr>
            <th>Kind</th>
            <th>Target</th>
            <th>Realized</th>
        </tr>
        <tr>
            <td>NaN</td>
            <td>{{printf "%.4f" .Result.Frequencies.TargetNaN}}</td>
            <td>{{printf "%.4f" .Result.Frequencies.RealizedNaN}}</td>
        </tr>
        <tr>
            <td>Empty</td>
            <td>{{printf "%.4f" .Result.Frequencies.TargetEmpty}}</td>
            <td>{{printf "%.4f" .Result.Frequencies.RealizedEmpty}}</td>
        </tr>
    </table>

    <h2>Checks</h2>
    <table>
        <tr>
            <th>Check</th>
            <th>Status</th>
            <th>Failures</th>
            <th>Issues</th>
        </tr>
        {{range .Result.Checks}}
        <tr>
            <td>{{.Name}}</td>
            <td class="{{if .Status}}status-pass{{else}}status-fail{{end}}">
                {{if .Status}}PASS{{else}}FAIL{{end}}
            </td>
            <td>{{.Failures}}</td>
            <td><ul>{{range .Issues}}<li>{{.}}</li>{{else}}<li>None</li>{{end}}</ul></td>
        </tr>
        {{end}}
    </table>

    <footer>
        <p>Generated on {{.Time}}</p>
    </footer>
</body>
</html>
`

// GenerateInspectionReport generates an HTML report from the inspection.
func (h *HTMLReportGenerator) GenerateInspectionReport(run Inspection) ([]byte, error) {
	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, run)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// GenerateAlertNotification generates an HTML alert.
func (h *HTMLReportGenerator) GenerateAlertNotification(run Inspection) ([]byte, error) {
	alertHTML := fmt.Sprintf(
		`<html><body><h3>Validation Failed</h3><p>Failed checks for %s: %s.</p></body></html>`,
		template.HTMLEscapeString(run.Path),
		template.HTMLEscapeString(strings.Join(failedChecks(run), ", ")),
	)
	return []byte(alertHTML), nil
}

// SaveReportToFile saves the HTML report to a file.
func (h *HTMLReportGenerator) SaveReportToFile(run Inspection, filePath string) error {
	data, err := h.GenerateInspectionReport(run)
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}

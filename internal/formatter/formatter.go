// package formatter exports the local generation history and batch run
// summaries to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/snap2style/s2s/internal/models"
	"github.com/snap2style/s2s/internal/shared"
	"github.com/snap2style/s2s/internal/workflow"
)

// HistoryToCSV converts generation records to CSV with columns:
// Timestamp, Style, InstructionsLen, Status, ResultURL
func HistoryToCSV(records []models.GenerationRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Timestamp", "Style", "InstructionsLen", "Status", "ResultURL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.CreatedAt.Format(time.RFC3339),
			record.Style,
			strconv.Itoa(record.InstructionsLen),
			record.Status,
			record.ResultURL,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// HistoryToMarkdown converts generation records to a Markdown table.
func HistoryToMarkdown(records []models.GenerationRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Generation History\n\n")
	buf.WriteString(fmt.Sprintf("**Generations**: %d\n\n", len(records)))

	buf.WriteString("| When | Style | Status | Result |\n")
	buf.WriteString("| --- | --- | --- | --- |\n")
	for _, record := range records {
		buf.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
			record.CreatedAt.Format("2006-01-02 15:04"),
			record.Style,
			record.Status,
			record.ResultURL,
		))
	}

	return buf.Bytes(), nil
}

// HistoryToText converts generation records to plain text.
func HistoryToText(records []models.GenerationRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Generations: %d\n\n", len(records)))
	for i, record := range records {
		buf.WriteString(fmt.Sprintf("%d. [%s] %s (%s) %s\n",
			i+1,
			record.CreatedAt.Format("2006-01-02 15:04"),
			record.Style,
			record.Status,
			record.ResultURL,
		))
	}

	return buf.Bytes(), nil
}

// HistoryToJSON converts generation records to pretty-printed JSON.
func HistoryToJSON(records []models.GenerationRecord) ([]byte, error) {
	type row struct {
		Timestamp       string `json:"timestamp"`
		Style           string `json:"style"`
		InstructionsLen int    `json:"instructions_len"`
		Status          string `json:"status"`
		ResultURL       string `json:"result_url,omitempty"`
	}

	rows := make([]row, 0, len(records))
	for _, record := range records {
		rows = append(rows, row{
			Timestamp:       record.CreatedAt.Format(time.RFC3339),
			Style:           record.Style,
			InstructionsLen: record.InstructionsLen,
			Status:          record.Status,
			ResultURL:       record.ResultURL,
		})
	}

	return shared.MarshalJSON(rows, true)
}

// WriteHistoryExport writes generation records to path in the given format.
//
// Supported formats: json (default), csv, markdown, txt.
func WriteHistoryExport(records []models.GenerationRecord, format, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("s2s_history_%d.%s", time.Now().Unix(), formatExtension(format))
	}

	var (
		data []byte
		err  error
	)

	switch format {
	case "csv":
		data, err = HistoryToCSV(records)
	case "markdown":
		data, err = HistoryToMarkdown(records)
	case "txt":
		data, err = HistoryToText(records)
	case "json", "":
		data, err = HistoryToJSON(records)
	default:
		return "", fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate %s export: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

func formatExtension(format string) string {
	switch format {
	case "csv":
		return "csv"
	case "markdown":
		return "md"
	case "txt":
		return "txt"
	default:
		return "json"
	}
}

// WriteBatchManifest writes a JSON summary of a bulk styling run.
func WriteBatchManifest(result *workflow.BatchResult, path string) error {
	type entry struct {
		Path     string `json:"path"`
		Filename string `json:"filename"`
		Success  bool   `json:"success"`
		URL      string `json:"url,omitempty"`
		Download string `json:"download_url,omitempty"`
		Error    string `json:"error,omitempty"`
	}

	manifest := struct {
		TotalImages int     `json:"total_images"`
		Successful  int     `json:"successful"`
		Failed      int     `json:"failed"`
		GeneratedAt string  `json:"generated_at"`
		Entries     []entry `json:"entries"`
	}{
		TotalImages: result.TotalImages,
		Successful:  result.Successful,
		Failed:      result.Failed,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Entries:     make([]entry, 0, len(result.Results)),
	}

	for _, res := range result.Results {
		e := entry{
			Path:     res.Path,
			Filename: res.Filename,
			Success:  res.Success,
		}
		if res.Result != nil {
			e.URL = res.Result.CanonicalURL
			e.Download = res.Result.DownloadURL
		}
		if res.Error != nil {
			e.Error = res.Error.Error()
		}
		manifest.Entries = append(manifest.Entries, e)
	}

	data, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

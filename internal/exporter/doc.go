// Package exporter serializes the enriched energy dataset for download:
// delimited text (CSV with UTF-8 BOM), XLSX workbooks and the PDF
// analysis report. Exports are unchanged views of the in-memory table;
// nothing here mutates the dataset.
package exporter

package export

import (
	"github.com/sadopc/timebill/internal/logger"
	"github.com/sadopc/timebill/internal/report"
	"github.com/sadopc/timebill/internal/store"
	"go.uber.org/zap"
)

// Exporter is the boundary used by front ends: failures are logged and
// reported as false instead of being returned.
type Exporter struct {
	logger *zap.Logger
}

func NewExporter(l *zap.Logger) *Exporter {
	return &Exporter{logger: logger.OrNop(l)}
}

func (e *Exporter) PDF(doc *report.Document, path string) bool {
	return e.done("pdf", path, ToPDF(doc, path))
}

func (e *Exporter) CSV(rows []store.ReportRow, path string) bool {
	return e.done("csv", path, ToCSV(rows, path))
}

func (e *Exporter) JSON(rows []store.ReportRow, path string) bool {
	return e.done("json", path, ToJSON(rows, path))
}

func (e *Exporter) done(format, path string, err error) bool {
	if err != nil {
		e.logger.Error("export failed",
			zap.String("format", format),
			zap.String("path", path),
			zap.Error(err),
		)
		return false
	}
	e.logger.Debug("export written", zap.String("format", format), zap.String("path", path))
	return true
}

package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edunet-br/sge-api/internal/models"
	"github.com/edunet-br/sge-api/pkg/export"
	appErrors "github.com/edunet-br/sge-api/pkg/errors"
)

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type snapshotProvider interface {
	ClassGroup(ctx context.Context, req ClassGroupDashboardRequest) (*ClassGroupDashboard, bool, error)
}

type finalResultLister interface {
	ListByYear(ctx context.Context, yearID string) ([]models.FinalResultRecord, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, generatedAt time.Time) ([]byte, error)
}

// ExportResult carries a rendered document ready to be served.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders closing summaries and year result reports.
type ExportService struct {
	snapshots snapshotProvider
	results   finalResultLister
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(snapshots snapshotProvider, results finalResultLister, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		snapshots: snapshots,
		results:   results,
		csv:       csv,
		pdf:       pdf,
		logger:    logger,
		now:       time.Now,
	}
}

// ClosingSummary renders the class group snapshot for a period as CSV or PDF.
func (s *ExportService) ClosingSummary(ctx context.Context, req ClassGroupDashboardRequest, format ExportFormat) (*ExportResult, error) {
	snapshot, _, err := s.snapshots.ClassGroup(ctx, req)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Title:   fmt.Sprintf("Fechamento %s", req.AssessmentPeriodID),
		Headers: []string{"Matricula", "Aluno", "Frequencia (%)", "Media", "Situacao"},
		Rows:    make([][]string, 0, len(snapshot.Students)),
	}
	for _, entry := range snapshot.Students {
		situation := "Reprovado"
		if entry.Passing {
			situation = "Aprovado"
		}
		if entry.RecoveryApplied {
			situation += " (recuperacao)"
		}
		student := entry.StudentName
		if student == "" {
			student = entry.StudentID
		}
		dataset.Rows = append(dataset.Rows, []string{
			entry.EnrollmentNumber,
			student,
			formatFloat(entry.Frequency),
			formatFloat(entry.Average),
			situation,
		})
	}

	name := fmt.Sprintf("fechamento_%s_%s", req.ClassGroupID, req.AssessmentPeriodID)
	return s.render(dataset, name, format)
}

// FinalResults renders the year-end result records as CSV or PDF.
func (s *ExportService) FinalResults(ctx context.Context, academicYearID string, format ExportFormat) (*ExportResult, error) {
	if academicYearID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "academic year id is required")
	}
	records, err := s.results.ListByYear(ctx, academicYearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list final results")
	}

	dataset := export.Dataset{
		Title:   "Resultados Finais",
		Headers: []string{"Aluno", "Turma", "Resultado", "Media Geral", "Frequencia Geral", "Conselho"},
		Rows:    make([][]string, 0, len(records)),
	}
	for _, record := range records {
		council := ""
		if record.CouncilOverride {
			council = "sim"
		}
		dataset.Rows = append(dataset.Rows, []string{
			record.StudentID,
			record.ClassGroupID,
			record.Result.Label(),
			formatOptionalFloat(record.OverallAverage),
			formatOptionalFloat(record.OverallFrequency),
			council,
		})
	}

	name := fmt.Sprintf("resultados_%s", academicYearID)
	return s.render(dataset, name, format)
}

func (s *ExportService) render(dataset export.Dataset, name string, format ExportFormat) (*ExportResult, error) {
	switch format {
	case ExportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Filename: name + ".csv", ContentType: "text/csv", Data: payload}, nil
	case ExportFormatPDF:
		payload, err := s.pdf.Render(dataset, s.now().UTC())
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Filename: name + ".pdf", ContentType: "application/pdf", Data: payload}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", strings.TrimSpace(string(format))))
	}
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}

func formatOptionalFloat(value *float64) string {
	if value == nil {
		return ""
	}
	return formatFloat(*value)
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
)

const reportSheet = "Progress"

var reportHeaders = []string{"Student ID", "Name", "Email", "Enrolled At", "Viewed", "Total Lectures", "Completed", "Last Activity"}

type reportService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewReportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) ReportService {
	return &reportService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// ExportProgressReport builds an xlsx with one row per enrolled student of a
// course the instructor owns. Courses owned by someone else look missing.
func (s *reportService) ExportProgressReport(ctx context.Context, instructorID, courseID uint) (*ProgressReport, error) {
	ownerID, err := s.repo.Course().GetInstructorID(ctx, nil, courseID)
	if err != nil {
		return nil, mapNotFound(err, ErrCourseNotFound)
	}
	if ownerID != instructorID {
		s.logger.Warn("Progress report requested by non-owner", "course_id", courseID, "instructor_id", instructorID)
		return nil, ErrCourseNotFound
	}

	rows, err := s.buildRows(ctx, courseID)
	if err != nil {
		return nil, err
	}

	content, err := renderProgressWorkbook(rows)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Progress report exported", "course_id", courseID, "rows", len(rows))

	return &ProgressReport{
		Filename: fmt.Sprintf("course-%d-progress.xlsx", courseID),
		Rows:     rows,
		Content:  content,
	}, nil
}

func (s *reportService) buildRows(ctx context.Context, courseID uint) ([]*models.ProgressReportRow, error) {
	students, err := s.repo.Enrollment().ListStudents(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}

	linked, err := s.repo.Lecture().GetIDsByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}

	progressRows, err := s.repo.Progress().ListByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	byUser := make(map[uint]*models.CourseProgress, len(progressRows))
	for _, p := range progressRows {
		byUser[p.UserID] = p
	}

	rows := make([]*models.ProgressReportRow, 0, len(students))
	for _, st := range students {
		row := &models.ProgressReportRow{
			UserID:        st.UserID,
			Name:          st.Name,
			Email:         st.Email,
			EnrolledAt:    st.EnrolledAt,
			TotalLectures: len(linked),
		}

		if p, ok := byUser[st.UserID]; ok {
			entries, err := p.Entries()
			if err != nil {
				return nil, err
			}
			row.Viewed = models.CountViewed(entries, linked)
			row.Completed = models.IsComplete(entries, linked)
			updated := p.UpdatedAt
			row.LastActivity = &updated
		}

		rows = append(rows, row)
	}

	return rows, nil
}

func renderProgressWorkbook(rows []*models.ProgressReportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(reportSheet, "A1", &reportHeaders); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range rows {
		lastActivity := ""
		if r.LastActivity != nil {
			lastActivity = r.LastActivity.UTC().Format(time.RFC3339)
		}
		values := []interface{}{
			r.UserID,
			r.Name,
			r.Email,
			r.EnrolledAt.UTC().Format(time.RFC3339),
			r.Viewed,
			r.TotalLectures,
			r.Completed,
			lastActivity,
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(reportSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

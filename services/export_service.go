package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/vnkhanh/checkout-survey/logger"
	"github.com/vnkhanh/checkout-survey/metrics"
	"github.com/vnkhanh/checkout-survey/models"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatJSON = "json"
)

var exportHeader = []string{"ID", "Email", "Order", "CreatedAt", "Answers"}

// Uploader đẩy file export lên object storage và trả về URL công khai.
type Uploader interface {
	Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
}

type ExportRequest struct {
	Format string     `json:"format"`
	Search string     `json:"search"`
	Status string     `json:"status"`
	From   *time.Time `json:"from,omitempty"`
	To     *time.Time `json:"to,omitempty"`
}

// ExportRow là một dòng trong file xuất.
type ExportRow struct {
	ID        uint   `json:"ID"`
	Email     string `json:"Email"`
	Order     string `json:"Order"`
	CreatedAt string `json:"CreatedAt"`
	Answers   string `json:"Answers"`
}

// ExportService chạy job xuất dữ liệu nền: tạo job → goroutine ghi file → client poll.
type ExportService struct {
	db        *gorm.DB
	dashboard *DashboardService
	dir       string
	uploader  Uploader
	metrics   *metrics.Collector
	wg        sync.WaitGroup
}

// NewExportService: uploader có thể nil (chỉ lưu file trên đĩa).
func NewExportService(db *gorm.DB, dashboard *DashboardService, dir string, uploader Uploader, m *metrics.Collector) *ExportService {
	return &ExportService{db: db, dashboard: dashboard, dir: dir, uploader: uploader, metrics: m}
}

func NormalizeFormat(f string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(f)) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

func (s *ExportService) Create(ctx context.Context, shop string, req ExportRequest) (*models.ExportJob, error) {
	format, err := NormalizeFormat(req.Format)
	if err != nil {
		return nil, err
	}
	status, ok := ParseStatus(req.Status)
	if !ok {
		return nil, fmt.Errorf("%w: status %q", ErrInvalidFilter, req.Status)
	}

	job := models.ExportJob{
		JobID:      uuid.New().String(),
		ShopDomain: shop,
		Format:     format,
		Search:     strings.TrimSpace(req.Search),
		StatusFilt: status,
		RangeFrom:  req.From,
		RangeTo:    req.To,
		Status:     models.ExportQueued,
	}
	if err := s.db.WithContext(ctx).Create(&job).Error; err != nil {
		return nil, fmt.Errorf("create export job: %w", err)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Process(context.Background(), job.JobID)
	}()
	return &job, nil
}

func (s *ExportService) Get(ctx context.Context, shop, jobID string) (*models.ExportJob, error) {
	var job models.ExportJob
	err := s.db.WithContext(ctx).Where("job_id = ? AND shop_domain = ?", jobID, shop).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get export job: %w", err)
	}
	return &job, nil
}

// Wait chờ các job đang chạy (shutdown và test).
func (s *ExportService) Wait() {
	s.wg.Wait()
}

// Process chạy một job tới khi done hoặc failed.
func (s *ExportService) Process(ctx context.Context, jobID string) {
	log := logger.WithField("job_id", jobID)

	var job models.ExportJob
	if err := s.db.WithContext(ctx).First(&job, "job_id = ?", jobID).Error; err != nil {
		log.WithError(err).Error("export: không tìm thấy job")
		return
	}
	if !s.setStatus(ctx, log, &job, map[string]interface{}{"status": models.ExportProcessing}) {
		s.metrics.RecordExport(job.Format, models.ExportFailed)
		return
	}

	fail := func(err error) {
		s.setStatus(ctx, log, &job, map[string]interface{}{"status": models.ExportFailed, "error_msg": err.Error()})
		s.metrics.RecordExport(job.Format, models.ExportFailed)
		log.WithError(err).Error("export: job failed")
	}

	rows, err := s.dashboard.Filter(ctx, ResponseQuery{
		Shop:   job.ShopDomain,
		Search: job.Search,
		Status: job.StatusFilt,
		From:   job.RangeFrom,
		To:     job.RangeTo,
		Sort:   "date-asc",
	})
	if err != nil {
		fail(err)
		return
	}

	data, err := Render(job.Format, ToExportRows(rows))
	if err != nil {
		fail(err)
		return
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		fail(err)
		return
	}
	filename := fmt.Sprintf("responses_%s.%s", job.JobID, job.Format)
	outPath := filepath.Join(s.dir, filename)
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		fail(err)
		return
	}

	updates := map[string]interface{}{"status": models.ExportDone, "file_path": outPath}
	if s.uploader != nil {
		url, err := s.uploader.Upload(ctx, "exports/"+filename, data, contentTypes[job.Format])
		if err != nil {
			// File trên đĩa vẫn tải được; chỉ mất link công khai.
			log.WithError(err).Warn("export: upload lên storage thất bại")
		} else {
			updates["public_url"] = url
		}
	}
	if !s.setStatus(ctx, log, &job, updates) {
		fail(errors.New("không ghi được trạng thái done"))
		return
	}
	s.metrics.RecordExport(job.Format, models.ExportDone)
	log.WithFields(logrus.Fields{"rows": len(rows), "format": job.Format}).Info("export: done")
}

// setStatus ghi trạng thái job; lỗi được log vì không còn ai nhận lỗi này.
func (s *ExportService) setStatus(ctx context.Context, log *logrus.Entry, job *models.ExportJob, updates map[string]interface{}) bool {
	if err := s.db.WithContext(ctx).Model(job).Updates(updates).Error; err != nil {
		log.WithError(err).WithField("status", updates["status"]).Error("export: cập nhật trạng thái job thất bại")
		return false
	}
	return true
}

var contentTypes = map[string]string{
	FormatCSV:  "text/csv",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatJSON: "application/json",
}

func ContentType(format string) string {
	return contentTypes[format]
}

// ToExportRows: câu trả lời được nối thành "tiêu đề: trả lời; ...".
func ToExportRows(rows []ResponseRow) []ExportRow {
	out := make([]ExportRow, 0, len(rows))
	for _, r := range rows {
		parts := make([]string, 0, len(r.Answers))
		for _, a := range r.Answers {
			parts = append(parts, a.QuestionTitle+": "+a.Answer)
		}
		out = append(out, ExportRow{
			ID:        r.ID,
			Email:     r.Email,
			Order:     r.OrderID,
			CreatedAt: r.CreatedAt.UTC().Format(time.RFC3339),
			Answers:   strings.Join(parts, "; "),
		})
	}
	return out
}

func Render(format string, rows []ExportRow) ([]byte, error) {
	switch format {
	case FormatCSV:
		return renderCSV(rows)
	case FormatXLSX:
		return renderXLSX(rows)
	case FormatJSON:
		return json.MarshalIndent(rows, "", "  ")
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

func (r ExportRow) cells() []string {
	return []string{strconv.FormatUint(uint64(r.ID), 10), r.Email, r.Order, r.CreatedAt, r.Answers}
}

func renderCSV(rows []ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(r.cells()); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

const sheetName = "Feedbacks"

func renderXLSX(rows []ExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}
	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		values := []interface{}{r.ID, r.Email, r.Order, r.CreatedAt, r.Answers}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

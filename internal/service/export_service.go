package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"student-records/internal/domain"
	"student-records/internal/repository"
	"student-records/internal/storage"
)

const exportPageSize = 500

// ErrExportDisabled is returned when no export bucket is configured.
var ErrExportDisabled = errors.New("roster export is not configured")

// ExportResult describes an uploaded roster snapshot.
type ExportResult struct {
	Location string
	Count    int
}

// ExportService writes CSV snapshots of the student roster to object storage.
type ExportService interface {
	Export(ctx context.Context) (*ExportResult, error)
	ListExports(ctx context.Context) ([]storage.ObjectInfo, error)
}

type ExportConfig struct {
	Bucket    string
	KeyPrefix string
}

type exportService struct {
	students repository.StudentRepository
	storage  storage.Service
	cfg      ExportConfig
	now      func() time.Time
	log      logrus.FieldLogger
}

// NewExportService returns a service that reports ErrExportDisabled when
// store is nil or no bucket is configured.
func NewExportService(students repository.StudentRepository, store storage.Service, cfg ExportConfig, log logrus.FieldLogger) ExportService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	return &exportService{
		students: students,
		storage:  store,
		cfg:      cfg,
		now:      time.Now,
		log:      log.WithField("component", "export"),
	}
}

func (s *exportService) enabled() bool {
	return s.storage != nil && s.cfg.Bucket != ""
}

func (s *exportService) Export(ctx context.Context) (*ExportResult, error) {
	if !s.enabled() {
		return nil, ErrExportDisabled
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "username", "level"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	count := 0
	req := domain.PageRequest{Page: 0, Size: exportPageSize, SortBy: domain.SortByID, Direction: domain.SortAsc}
	for {
		page, err := s.students.List(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("read students: %w", err)
		}
		for _, st := range page.Items {
			if err := w.Write([]string{strconv.FormatInt(st.ID, 10), st.Username, string(st.Level)}); err != nil {
				return nil, fmt.Errorf("write csv row: %w", err)
			}
			count++
		}
		if len(page.Items) < req.Size {
			break
		}
		req.Page++
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	key := fmt.Sprintf("students-%s-%s.csv", s.now().UTC().Format("20060102T150405Z"), uuid.NewString())
	if s.cfg.KeyPrefix != "" {
		key = path.Join(s.cfg.KeyPrefix, key)
	}

	location, err := s.storage.Upload(ctx, &buf, storage.UploadOptions{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		ContentType: "text/csv",
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"location": location, "count": count}).Info("roster exported")
	return &ExportResult{Location: location, Count: count}, nil
}

func (s *exportService) ListExports(ctx context.Context) ([]storage.ObjectInfo, error) {
	if !s.enabled() {
		return nil, ErrExportDisabled
	}
	prefix := ""
	if s.cfg.KeyPrefix != "" {
		prefix = s.cfg.KeyPrefix + "/"
	}
	return s.storage.ListObjects(ctx, s.cfg.Bucket, prefix)
}

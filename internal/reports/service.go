package reports

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/fdg312/fitplanner/internal/blob"
	"github.com/fdg312/fitplanner/internal/weekplan"
	"github.com/google/uuid"
)

var (
	ErrInvalidFormat    = errors.New("invalid format")
	ErrExportNotFound   = errors.New("export not found")
	ErrStoreUnavailable = errors.New("export store not configured")
)

// ScheduleSource is the read side of the planner service.
type ScheduleSource interface {
	Schedule() weekplan.WeekSchedule
	Profile() weekplan.Profile
}

type Logger interface {
	Printf(format string, v ...any)
}

// Service renders exports and, when an object store is configured, keeps
// copies there. Stores without presigned URLs (local disk) are served back
// through the download route instead.
type Service struct {
	source     ScheduleSource
	generator  *Generator
	objects    blob.Store
	keyPrefix  string
	presignTTL int
	logger     Logger
	now        func() time.Time
}

func NewService(source ScheduleSource, objects blob.Store, keyPrefix string, presignTTL int, logger Logger) *Service {
	if presignTTL <= 0 {
		presignTTL = 900
	}
	return &Service{
		source:     source,
		generator:  NewGenerator(),
		objects:    objects,
		keyPrefix:  strings.Trim(keyPrefix, "/"),
		presignTTL: presignTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Render builds the export for the current schedule.
func (s *Service) Render(format string) (*Export, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = FormatPDF
	}
	if format != FormatPDF && format != FormatCSV {
		return nil, ErrInvalidFormat
	}

	data, err := s.generator.Generate(format, s.source.Schedule(), s.source.Profile())
	if err != nil {
		return nil, err
	}
	return &Export{
		Format:      format,
		ContentType: contentTypeFor(format),
		Filename:    fmt.Sprintf("weekly_plan_%s.%s", s.now().UTC().Format("2006-01-02"), format),
		Data:        data,
	}, nil
}

// CreateExport renders and uploads an export. downloadBase is used to build
// the URL when the store cannot presign.
func (s *Service) CreateExport(ctx context.Context, req CreateExportRequest, downloadBase string) (*ExportDTO, error) {
	if s.objects == nil {
		return nil, ErrStoreUnavailable
	}

	export, err := s.Render(req.Format)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	key := s.objectKey(id, export.Format)
	size, err := s.objects.PutObject(ctx, key, export.Data, export.ContentType)
	if err != nil {
		s.logf("WARN reports: put_failed key=%s err=%q", key, err.Error())
		return nil, fmt.Errorf("upload export: %w", err)
	}

	createdAt := s.now().UTC()
	dto := &ExportDTO{
		ID:        id,
		Format:    export.Format,
		ObjectKey: key,
		SizeBytes: size,
		CreatedAt: createdAt,
	}

	url, err := s.objects.PresignGet(ctx, key, s.presignTTL)
	switch {
	case err == nil:
		expires := createdAt.Add(time.Duration(s.presignTTL) * time.Second)
		dto.DownloadURL = url
		dto.ExpiresAt = &expires
	case errors.Is(err, blob.ErrPresignUnsupported):
		dto.DownloadURL = fmt.Sprintf("%s/v1/exports/%s/download?format=%s", strings.TrimRight(downloadBase, "/"), id, export.Format)
	default:
		return nil, fmt.Errorf("presign export: %w", err)
	}

	s.logf("INFO reports: export stored id=%s format=%s size=%d", id, export.Format, size)
	return dto, nil
}

// GetExport reads back a stored export.
func (s *Service) GetExport(ctx context.Context, id, format string) (*Export, error) {
	if s.objects == nil {
		return nil, ErrStoreUnavailable
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrExportNotFound
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatPDF && format != FormatCSV {
		return nil, ErrInvalidFormat
	}

	data, err := s.objects.GetObject(ctx, s.objectKey(id, format))
	if errors.Is(err, blob.ErrNotFound) {
		return nil, ErrExportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &Export{
		Format:      format,
		ContentType: contentTypeFor(format),
		Filename:    fmt.Sprintf("weekly_plan_%s.%s", id, format),
		Data:        data,
	}, nil
}

// DeleteExport removes a stored export; deleting a missing one succeeds.
func (s *Service) DeleteExport(ctx context.Context, id, format string) error {
	if s.objects == nil {
		return ErrStoreUnavailable
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrExportNotFound
	}
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatPDF && format != FormatCSV {
		return ErrInvalidFormat
	}
	return s.objects.DeleteObject(ctx, s.objectKey(id, format))
}

func (s *Service) objectKey(id, format string) string {
	return path.Join(s.keyPrefix, "exports", id+"."+format)
}

func (s *Service) logf(format string, v ...any) {
	if s.logger != nil {
		s.logger.Printf(format, v...)
	}
}

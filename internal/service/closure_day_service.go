package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ElberTsolindo/pmsfcacademy/internal/dto"
	"github.com/ElberTsolindo/pmsfcacademy/internal/eligibility"
	"github.com/ElberTsolindo/pmsfcacademy/internal/model"
	"github.com/ElberTsolindo/pmsfcacademy/internal/repository"
	pkgerrors "github.com/ElberTsolindo/pmsfcacademy/pkg/errors"
)

// ── 闭馆日模块业务错误 ──

var (
	ErrClosureDayNotFound = pkgerrors.Wrap(pkgerrors.ErrNotFound, "闭馆日不存在")
	ErrClosureDayExists   = pkgerrors.Wrap(pkgerrors.ErrDuplicateRecord, "该日期已是闭馆日")
	ErrICSSourceMissing   = validationError("请上传 .ics 文件或提供日历地址")
)

// ClosureDayService 闭馆日业务接口
type ClosureDayService interface {
	List(ctx context.Context, req *dto.ClosureDayListRequest) ([]dto.ClosureDayResponse, error)
	Create(ctx context.Context, req *dto.CreateClosureDayRequest, callerID string) (*dto.ClosureDayResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	// ImportICS 从上传的 iCalendar 内容导入，已存在的日期跳过
	ImportICS(ctx context.Context, reader io.Reader, callerID string) (*dto.ImportClosureDaysResponse, error)
	// ImportURL 拉取 iCalendar 地址后导入
	ImportURL(ctx context.Context, url string, callerID string) (*dto.ImportClosureDaysResponse, error)
}

type closureDayService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewClosureDayService 创建 ClosureDayService 实例
func NewClosureDayService(repo *repository.Repository, logger *zap.Logger) ClosureDayService {
	return &closureDayService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *closureDayService) List(ctx context.Context, req *dto.ClosureDayListRequest) ([]dto.ClosureDayResponse, error) {
	from, to := strings.TrimSpace(req.From), strings.TrimSpace(req.To)
	for _, d := range []string{from, to} {
		if d != "" {
			if _, err := parseDay(d); err != nil {
				return nil, err
			}
		}
	}

	days, err := s.repo.ClosureDay.List(ctx, from, to)
	if err != nil {
		s.logger.Error("列出闭馆日失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.ClosureDayResponse, 0, len(days))
	for i := range days {
		result = append(result, toClosureDayResponse(&days[i]))
	}
	return result, nil
}

// ────────────────────── Create ──────────────────────

func (s *closureDayService) Create(ctx context.Context, req *dto.CreateClosureDayRequest, callerID string) (*dto.ClosureDayResponse, error) {
	date, err := parseDay(req.Date)
	if err != nil {
		return nil, err
	}

	day := &model.ClosureDay{
		Date:   eligibility.FormatDate(date),
		Name:   strings.TrimSpace(req.Name),
		Source: "manual",
	}
	day.CreatedBy = optionalID(callerID)

	if err := s.repo.ClosureDay.Create(ctx, day); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateRecord) {
			return nil, ErrClosureDayExists
		}
		s.logger.Error("创建闭馆日失败", zap.Error(err))
		return nil, err
	}

	auditBestEffort(ctx, s.repo, s.logger, model.AuditActionClosureDayChanged, actorOf(callerID),
		fmt.Sprintf("新增闭馆日 %s（%s）", day.Date, day.Name))
	resp := toClosureDayResponse(day)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *closureDayService) Delete(ctx context.Context, id string, callerID string) error {
	day, err := s.repo.ClosureDay.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClosureDayNotFound
		}
		return err
	}

	if err := s.repo.ClosureDay.Delete(ctx, id); err != nil {
		s.logger.Error("删除闭馆日失败", zap.String("id", id), zap.Error(err))
		return err
	}

	auditBestEffort(ctx, s.repo, s.logger, model.AuditActionClosureDayChanged, actorOf(callerID),
		fmt.Sprintf("删除闭馆日 %s（%s）", day.Date, day.Name))
	return nil
}

// ────────────────────── Import ──────────────────────

func (s *closureDayService) ImportURL(ctx context.Context, url string, callerID string) (*dto.ImportClosureDaysResponse, error) {
	if strings.TrimSpace(url) == "" {
		return nil, ErrICSSourceMissing
	}
	body, err := FetchICSContent(ctx, url)
	if err != nil {
		s.logger.Warn("拉取日历失败", zap.String("url", url), zap.Error(err))
		return nil, validationError(err.Error())
	}
	defer body.Close()
	return s.ImportICS(ctx, body, callerID)
}

func (s *closureDayService) ImportICS(ctx context.Context, reader io.Reader, callerID string) (*dto.ImportClosureDaysResponse, error) {
	if reader == nil {
		return nil, ErrICSSourceMissing
	}
	parsed, warnings, err := ParseClosureICS(reader)
	if err != nil {
		return nil, validationError(err.Error())
	}

	resp := &dto.ImportClosureDaysResponse{Warnings: warnings}
	err = s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		for _, p := range parsed {
			day := &model.ClosureDay{Date: p.Date, Name: p.Name, Source: "ics"}
			day.CreatedBy = optionalID(callerID)
			inserted, err := tx.ClosureDay.CreateIfAbsent(ctx, day)
			if err != nil {
				return err
			}
			if inserted {
				resp.Imported++
			} else {
				resp.Skipped++
			}
		}
		if resp.Imported == 0 {
			return nil
		}
		return appendAudit(ctx, tx, model.AuditActionClosureDayChanged, actorOf(callerID),
			fmt.Sprintf("从日历导入闭馆日 %d 天（跳过 %d 天）", resp.Imported, resp.Skipped))
	})
	if err != nil {
		s.logger.Error("导入闭馆日失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("导入闭馆日完成", zap.Int("imported", resp.Imported), zap.Int("skipped", resp.Skipped))
	return resp, nil
}

func toClosureDayResponse(d *model.ClosureDay) dto.ClosureDayResponse {
	return dto.ClosureDayResponse{
		ID:     d.ClosureDayID,
		Date:   d.Date,
		Name:   d.Name,
		Source: d.Source,
	}
}

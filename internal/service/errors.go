package service

import (
	"errors"

	pkgerrors "github.com/ElberTsolindo/pmsfcacademy/pkg/errors"
)

// ── 跨模块共享的业务错误 ──

var (
	ErrMemberNotFound   = pkgerrors.Wrap(pkgerrors.ErrNotFound, "学员不存在")
	ErrTimeSlotNotFound = pkgerrors.Wrap(pkgerrors.ErrNotFound, "时段不存在")
	ErrInvalidDate      = pkgerrors.Wrap(pkgerrors.ErrValidation, "日期格式应为 YYYY-MM-DD")
	ErrNoPermission     = errors.New("无权操作")
)

// validationError 构造带具体描述的校验错误
func validationError(msg string) error {
	return pkgerrors.Wrap(pkgerrors.ErrValidation, msg)
}

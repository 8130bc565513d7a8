package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ElberTsolindo/pmsfcacademy/internal/service"
	pkgerrors "github.com/ElberTsolindo/pmsfcacademy/pkg/errors"
	"github.com/ElberTsolindo/pmsfcacademy/pkg/response"
)

// 业务错误码：前两位对应模块
const (
	codeValidation     = 10001
	codeForbidden      = 10003
	codeNotFound       = 10004
	codeDuplicate      = 10009
	codeBodyTooLarge   = 10005
	codeOptimisticLock = 10010

	codeInvalidCredentials = 11001
	codeUserDisabled       = 11002
	codeInvalidToken       = 11003
	codeUnknownCPF         = 11004
	codeUserNotFound       = 12001

	codeCheckInNotAllowed   = 14001
	codeReactivationBlocked = 14002
	codeMaintenanceBusy     = 19001
)

// respondError 按错误分类写入响应：
// 校验 400，不存在 404，重复或版本冲突 409，其余 500
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, codeInvalidCredentials, err.Error())
	case errors.Is(err, service.ErrUnknownCPF):
		response.Unauthorized(c, codeUnknownCPF, err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		response.Unauthorized(c, codeInvalidToken, err.Error())
	case errors.Is(err, service.ErrUserDisabled):
		response.Forbidden(c, codeUserDisabled, err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, codeUserNotFound, err.Error())
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, codeForbidden, err.Error())
	case errors.Is(err, service.ErrMemberHasAbsences), errors.Is(err, service.ErrCertificateExpired):
		response.Error(c, http.StatusUnprocessableEntity, codeReactivationBlocked, err.Error())
	case errors.Is(err, service.ErrMaintenanceBusy):
		response.Conflict(c, codeMaintenanceBusy, err.Error())
	case errors.Is(err, pkgerrors.ErrValidation):
		response.BadRequest(c, codeValidation, err.Error())
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.NotFound(c, codeNotFound, err.Error())
	case errors.Is(err, pkgerrors.ErrDuplicateRecord):
		response.Conflict(c, codeDuplicate, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, codeOptimisticLock, err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

// bindFailed 请求参数绑定失败
func bindFailed(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, codeBodyTooLarge, "请求体过大")
		return
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, codeValidation, "参数校验失败", err.Error())
}

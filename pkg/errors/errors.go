package errors

import "errors"

// ── 业务错误分类 ──
// Service 层的哨兵错误通过 fmt.Errorf("%w") 包装以下分类，
// Handler 层可用 errors.Is 统一判断。

var (
	// ErrNotFound 资源不存在（如未知学员 ID）
	ErrNotFound = errors.New("资源不存在")

	// ErrDuplicateRecord 同一学员同一日期的记录已存在
	ErrDuplicateRecord = errors.New("记录已存在")

	// ErrValidation 输入数据格式不合法（证件号、电话等）
	ErrValidation = errors.New("数据校验失败")
)

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// Wrap 将具体业务错误挂到分类之下，保留原始描述
func Wrap(kind error, msg string) error {
	return &classified{kind: kind, msg: msg}
}

type classified struct {
	kind error
	msg  string
}

func (e *classified) Error() string { return e.msg }

func (e *classified) Unwrap() error { return e.kind }

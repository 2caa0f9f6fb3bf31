package dds

import "context"

// ════════════════════════════════════════════════════════════════════════════
//                              守卫条件
// ════════════════════════════════════════════════════════════════════════════

// CreateGuardCondition 创建守卫条件
//
// owner 为根实体、域或参与者。
func (rt *Runtime) CreateGuardCondition(owner Handle) (Handle, error) {
	if err := rt.enter(); err != nil {
		return 0, err
	}
	return rt.svc.CreateGuardCondition(owner)
}

// SetGuardCondition 设置守卫条件的触发值
func (rt *Runtime) SetGuardCondition(cond Handle, triggered bool) error {
	if err := rt.enter(); err != nil {
		return err
	}
	return rt.svc.SetGuardCondition(cond, triggered)
}

// ReadGuardCondition 返回守卫条件的触发值
func (rt *Runtime) ReadGuardCondition(cond Handle) (bool, error) {
	if err := rt.enter(); err != nil {
		return false, err
	}
	return rt.svc.ReadGuardCondition(cond)
}

// TakeGuardCondition 返回并清除守卫条件的触发值
func (rt *Runtime) TakeGuardCondition(cond Handle) (bool, error) {
	if err := rt.enter(); err != nil {
		return false, err
	}
	return rt.svc.TakeGuardCondition(cond)
}

// ════════════════════════════════════════════════════════════════════════════
//                              等待集
// ════════════════════════════════════════════════════════════════════════════

// CreateWaitSet 创建等待集
//
// owner 为根实体、域或参与者；只能挂接 owner 子树内的实体。
func (rt *Runtime) CreateWaitSet(owner Handle) (Handle, error) {
	if err := rt.enter(); err != nil {
		return 0, err
	}
	return rt.svc.CreateWaitSet(owner)
}

// WaitSetAttach 挂接实体，arg 在实体触发时由 WaitSetWait 返回
func (rt *Runtime) WaitSetAttach(waitset, h Handle, arg any) error {
	if err := rt.enter(); err != nil {
		return err
	}
	return rt.svc.WaitSetAttach(waitset, h, arg)
}

// WaitSetDetach 解除挂接
func (rt *Runtime) WaitSetDetach(waitset, h Handle) error {
	if err := rt.enter(); err != nil {
		return err
	}
	return rt.svc.WaitSetDetach(waitset, h)
}

// WaitSetEntities 返回已挂接的实体
func (rt *Runtime) WaitSetEntities(waitset Handle) ([]Handle, error) {
	if err := rt.enter(); err != nil {
		return nil, err
	}
	return rt.svc.WaitSetEntities(waitset)
}

// WaitSetSetTrigger 设置等待集自身的触发值
func (rt *Runtime) WaitSetSetTrigger(waitset Handle, triggered bool) error {
	if err := rt.enter(); err != nil {
		return err
	}
	return rt.svc.WaitSetSetTrigger(waitset, triggered)
}

// WaitSetWait 阻塞直到至少一个挂接实体触发
//
// 返回已触发实体的 arg。ctx 取消或超时时返回 ctx.Err()；
// 等待集在等待期间被删除（包括运行时关闭）时返回 ErrNotFound。
func (rt *Runtime) WaitSetWait(ctx context.Context, waitset Handle) ([]any, error) {
	if err := rt.enter(); err != nil {
		return nil, err
	}
	return rt.svc.WaitSetWait(ctx, waitset)
}

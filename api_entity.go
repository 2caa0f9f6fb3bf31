package dds

// ════════════════════════════════════════════════════════════════════════════
//                              实体通用操作
// ════════════════════════════════════════════════════════════════════════════

// Delete 删除实体及其全部子实体
//
// 若实体的最后一个隐式子实体被删除，隐式父实体随之删除。
// 另一个线程正在删除同一实体时视为成功。
func (rt *Runtime) Delete(h Handle) error {
	if err := rt.enter(); err != nil {
		return err
	}
	return rt.m.Delete(h)
}

// GetParent 返回父实体句柄，根实体返回 0
func (rt *Runtime) GetParent(h Handle) (Handle, error) {
	if err := rt.enter(); err != nil {
		return 0, err
	}
	return rt.m.GetParent(h)
}

// GetParticipant 返回实体所属的参与者
func (rt *Runtime) GetParticipant(h Handle) (Handle, error) {
	if err := rt.enter(); err != nil {
		return 0, err
	}
	return rt.m.GetParticipant(h)
}

// GetChildren 返回子实体句柄，按创建顺序排列
//
// 创建中或推迟删除的子实体不出现在结果中。
func (rt *Runtime) GetChildren(h Handle) ([]Handle, error) {
	if err := rt.enter(); err != nil {
		return nil, err
	}
	return rt.m.GetChildren(h)
}

// GetQoS 返回实体 QoS 的副本
func (rt *Runtime) GetQoS(h Handle) (*QoS, error) {
	if err := rt.enter(); err != nil {
		return nil, err
	}
	return rt.m.GetQoS(h)
}

// SetQoS 修改实体 QoS
//
// 已使能实体只能修改可变策略；影响远端匹配的策略返回 ErrUnsupported。
// 主题的修改会下推到使用该主题的写者和读者。
func (rt *Runtime) SetQoS(h Handle, q *QoS) error {
	if err := rt.enter(); err != nil {
		return err
	}
	return rt.m.SetQoS(h, q)
}

// GetListener 返回实体 listener 的副本
func (rt *Runtime) GetListener(h Handle) (*Listener, error) {
	if err := rt.enter(); err != nil {
		return nil, err
	}
	return rt.m.GetListener(h)
}

// SetListener 设置实体 listener，并下推到子孙实体的继承槽
//
// 等待正在执行的回调结束后才替换。nil 清空 listener。
func (rt *Runtime) SetListener(h Handle, l *Listener) error {
	if err := rt.enter(); err != nil {
		return err
	}
	return rt.m.SetListener(h, l)
}

// Enable 使能实体
//
// 父实体未使能时返回 ErrPreconditionNotMet。
func (rt *Runtime) Enable(h Handle) error {
	if err := rt.enter(); err != nil {
		return err
	}
	return rt.m.Enable(h)
}

// IsEnabled 报告实体是否已使能
func (rt *Runtime) IsEnabled(h Handle) (bool, error) {
	if err := rt.enter(); err != nil {
		return false, err
	}
	return rt.m.IsEnabled(h)
}

// GetInstanceHandle 返回实体实例标识
func (rt *Runtime) GetInstanceHandle(h Handle) (InstanceID, error) {
	if err := rt.enter(); err != nil {
		return 0, err
	}
	return rt.m.GetInstanceHandle(h)
}

// GetGUID 返回实体全局标识
func (rt *Runtime) GetGUID(h Handle) (GUID, error) {
	if err := rt.enter(); err != nil {
		return GUID{}, err
	}
	return rt.m.GetGUID(h)
}

// GetDomainID 返回实体所属的域
func (rt *Runtime) GetDomainID(h Handle) (DomainID, error) {
	if err := rt.enter(); err != nil {
		return 0, err
	}
	return rt.m.GetDomainID(h)
}

// ════════════════════════════════════════════════════════════════════════════
//                              状态操作
// ════════════════════════════════════════════════════════════════════════════

// GetStatusChanges 返回已触发的状态
func (rt *Runtime) GetStatusChanges(h Handle) (StatusMask, error) {
	if err := rt.enter(); err != nil {
		return 0, err
	}
	return rt.m.GetStatusChanges(h)
}

// GetStatusMask 返回状态使能掩码
func (rt *Runtime) GetStatusMask(h Handle) (StatusMask, error) {
	if err := rt.enter(); err != nil {
		return 0, err
	}
	return rt.m.GetStatusMask(h)
}

// SetStatusMask 设置状态使能掩码
//
// 超出实体类型允许范围的位返回 ErrBadParameter。
func (rt *Runtime) SetStatusMask(h Handle, mask StatusMask) error {
	if err := rt.enter(); err != nil {
		return err
	}
	return rt.m.SetStatusMask(h, mask)
}

// ReadStatus 返回 mask 内已触发的状态，不清除
func (rt *Runtime) ReadStatus(h Handle, mask StatusMask) (StatusMask, error) {
	if err := rt.enter(); err != nil {
		return 0, err
	}
	return rt.m.ReadStatus(h, mask)
}

// TakeStatus 返回并清除 mask 内已触发的状态
func (rt *Runtime) TakeStatus(h Handle, mask StatusMask) (StatusMask, error) {
	if err := rt.enter(); err != nil {
		return 0, err
	}
	return rt.m.TakeStatus(h, mask)
}

// Triggered 报告实体是否处于触发状态
func (rt *Runtime) Triggered(h Handle) (bool, error) {
	if err := rt.enter(); err != nil {
		return false, err
	}
	return rt.m.Triggered(h)
}

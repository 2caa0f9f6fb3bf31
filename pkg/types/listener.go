package types

// ============================================================================
//                              Listener - 回调集合
// ============================================================================

// ListenerFunc 状态回调
//
// entity 为状态发生变化的实体句柄。回调在实体的回调计数保护下执行，
// 不得在回调内删除该实体或替换其 listener。
type ListenerFunc func(entity Handle, status StatusID)

// Listener 每个状态一个回调槽，附带"继承"标记
//
// 被标记为继承的槽来自祖先实体，祖先的 listener 变化时会被覆盖；
// 未标记的槽是实体自身的显式设置，不受祖先变化影响。
type Listener struct {
	callbacks [NumStatus]ListenerFunc
	inherited StatusMask
}

// NewListener 创建空 Listener
func NewListener() *Listener {
	return &Listener{}
}

// Set 设置指定状态的回调，并清除其继承标记
func (l *Listener) Set(s StatusID, fn ListenerFunc) *Listener {
	if s < 0 || int(s) >= NumStatus {
		return l
	}
	l.callbacks[s] = fn
	l.inherited &^= s.Mask()
	return l
}

// Get 返回指定状态的回调
func (l *Listener) Get(s StatusID) ListenerFunc {
	if l == nil || s < 0 || int(s) >= NumStatus {
		return nil
	}
	return l.callbacks[s]
}

// Reset 清空所有回调与继承标记
func (l *Listener) Reset() {
	*l = Listener{}
}

// Clone 返回副本；nil 返回空 Listener
func (l *Listener) Clone() *Listener {
	c := &Listener{}
	if l != nil {
		*c = *l
	}
	return c
}

// Mask 返回已设置回调的状态集合
func (l *Listener) Mask() StatusMask {
	if l == nil {
		return 0
	}
	var m StatusMask
	for i, fn := range l.callbacks {
		if fn != nil {
			m |= StatusID(i).Mask()
		}
	}
	return m
}

// Inherited 返回继承自祖先的槽
func (l *Listener) Inherited() StatusMask {
	if l == nil {
		return 0
	}
	return l.inherited
}

// Inherit 为空槽填入 src 的回调并标记为继承
//
// 即使 src 的对应槽为空也会标记，使祖先之后的修改能够下推到该槽。
func (l *Listener) Inherit(src *Listener) {
	if src == nil {
		return
	}
	for i := range l.callbacks {
		if l.callbacks[i] == nil {
			l.callbacks[i] = src.callbacks[i]
			l.inherited |= StatusID(i).Mask()
		}
	}
}

// Merge 为空槽填入 src 的回调，保持原有继承标记
func (l *Listener) Merge(src *Listener) {
	if src == nil {
		return
	}
	inherited := l.inherited
	l.Inherit(src)
	l.inherited = inherited
}

// OverrideInherited 用 src 覆盖所有继承槽
func (l *Listener) OverrideInherited(src *Listener) {
	if src == nil {
		return
	}
	for i := range l.callbacks {
		if l.inherited&StatusID(i).Mask() != 0 {
			l.callbacks[i] = src.callbacks[i]
		}
	}
}

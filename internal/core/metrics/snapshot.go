package metrics

// Snapshot 实体计数快照，键为实体类型名
type Snapshot struct {
	Created map[string]int64 `json:"created"`
	Deleted map[string]int64 `json:"deleted"`
	Live    map[string]int64 `json:"live"`
}

func newSnapshot() Snapshot {
	return Snapshot{
		Created: make(map[string]int64),
		Deleted: make(map[string]int64),
		Live:    make(map[string]int64),
	}
}

func (s Snapshot) clone() Snapshot {
	out := newSnapshot()
	for k, v := range s.Created {
		out.Created[k] = v
	}
	for k, v := range s.Deleted {
		out.Deleted[k] = v
	}
	for k, v := range s.Live {
		out.Live[k] = v
	}
	return out
}

// TotalLive 返回存活实体总数
func (s Snapshot) TotalLive() int64 {
	var n int64
	for _, v := range s.Live {
		n += v
	}
	return n
}

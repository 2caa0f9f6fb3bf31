package dds

import "github.com/dep2p/go-dds/internal/core/dcps"

// QueryFilter 查询条件的样本过滤函数
type QueryFilter = dcps.QueryFilter

// ════════════════════════════════════════════════════════════════════════════
//                              参与者与主题
// ════════════════════════════════════════════════════════════════════════════

// CreateParticipant 在指定域中创建参与者
//
// 域实体按需隐式创建，随最后一个参与者删除。
// qos 与 l 可以为 nil。
func (rt *Runtime) CreateParticipant(domain DomainID, qos *QoS, l *Listener) (Handle, error) {
	if err := rt.enter(); err != nil {
		return 0, err
	}
	return rt.svc.CreateParticipant(domain, qos, l)
}

// CreateTopic 创建主题
//
// 同一参与者内同名主题共享同一个主题对象：类型名必须一致，
// 提供的 QoS 必须与已有 QoS 相同。
func (rt *Runtime) CreateTopic(participant Handle, name, typeName string, qos *QoS, l *Listener) (Handle, error) {
	if err := rt.enter(); err != nil {
		return 0, err
	}
	return rt.svc.CreateTopic(participant, name, typeName, qos, l)
}

// FindTopic 按名称查找参与者内的主题，未找到返回 0
func (rt *Runtime) FindTopic(participant Handle, name string) (Handle, error) {
	if err := rt.enter(); err != nil {
		return 0, err
	}
	return rt.svc.FindTopic(participant, name)
}

// TopicName 返回主题名与类型名
func (rt *Runtime) TopicName(topic Handle) (name, typeName string, err error) {
	if err := rt.enter(); err != nil {
		return "", "", err
	}
	return rt.svc.TopicName(topic)
}

// ════════════════════════════════════════════════════════════════════════════
//                              发布与订阅
// ════════════════════════════════════════════════════════════════════════════

// CreatePublisher 创建发布者
func (rt *Runtime) CreatePublisher(participant Handle, qos *QoS, l *Listener) (Handle, error) {
	if err := rt.enter(); err != nil {
		return 0, err
	}
	return rt.svc.CreatePublisher(participant, qos, l)
}

// CreateSubscriber 创建订阅者
func (rt *Runtime) CreateSubscriber(participant Handle, qos *QoS, l *Listener) (Handle, error) {
	if err := rt.enter(); err != nil {
		return 0, err
	}
	return rt.svc.CreateSubscriber(participant, qos, l)
}

// CreateWriter 创建写者
//
// parent 为发布者或参与者；直接在参与者下创建时隐式创建一个发布者。
func (rt *Runtime) CreateWriter(parent, topic Handle, qos *QoS, l *Listener) (Handle, error) {
	if err := rt.enter(); err != nil {
		return 0, err
	}
	return rt.svc.CreateWriter(parent, topic, qos, l)
}

// CreateReader 创建读者
//
// parent 为订阅者或参与者；直接在参与者下创建时隐式创建一个订阅者。
func (rt *Runtime) CreateReader(parent, topic Handle, qos *QoS, l *Listener) (Handle, error) {
	if err := rt.enter(); err != nil {
		return 0, err
	}
	return rt.svc.CreateReader(parent, topic, qos, l)
}

// GetTopic 返回写者、读者或读条件关联的主题
func (rt *Runtime) GetTopic(h Handle) (Handle, error) {
	if err := rt.enter(); err != nil {
		return 0, err
	}
	return rt.svc.GetTopic(h)
}

// ════════════════════════════════════════════════════════════════════════════
//                              读条件与数据
// ════════════════════════════════════════════════════════════════════════════

// CreateReadCondition 创建读者的读条件
func (rt *Runtime) CreateReadCondition(reader Handle, mask uint32) (Handle, error) {
	if err := rt.enter(); err != nil {
		return 0, err
	}
	return rt.svc.CreateReadCondition(reader, mask)
}

// CreateQueryCondition 创建带过滤函数的查询条件
func (rt *Runtime) CreateQueryCondition(reader Handle, mask uint32, filter QueryFilter) (Handle, error) {
	if err := rt.enter(); err != nil {
		return 0, err
	}
	return rt.svc.CreateQueryCondition(reader, mask, filter)
}

// GetConditionMask 返回读条件的样本状态掩码
func (rt *Runtime) GetConditionMask(cond Handle) (uint32, error) {
	if err := rt.enter(); err != nil {
		return 0, err
	}
	return rt.svc.GetConditionMask(cond)
}

// DeliverData 向读者投递一个样本
//
// 触发读者的 DataAvailable 状态（或订阅者的 DataOnReaders 回调），
// 并触发匹配的读条件。
func (rt *Runtime) DeliverData(reader Handle, sample any) error {
	if err := rt.enter(); err != nil {
		return err
	}
	return rt.svc.DeliverData(reader, sample)
}

// ReportStatus 报告实体的通信状态变化
//
// 有对应回调时调用回调，否则置位状态并唤醒挂接的等待集。
// DataAvailable 与 DataOnReaders 由 DeliverData 产生，这里返回 ErrBadParameter。
func (rt *Runtime) ReportStatus(h Handle, id StatusID) error {
	if err := rt.enter(); err != nil {
		return err
	}
	return rt.svc.ReportStatus(h, id)
}

// ConsumeData 标记读者的数据已被取走
func (rt *Runtime) ConsumeData(reader Handle) error {
	if err := rt.enter(); err != nil {
		return err
	}
	return rt.svc.ConsumeData(reader)
}

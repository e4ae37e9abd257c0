package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// JobType — тег варианта job. Закрытое множество: воркер делает
// исчерпывающий switch, неизвестный тег отбрасывается ещё на парсинге.
type JobType string

const (
	JobCreateOrder       JobType = "create_order"
	JobUpdateOrderStatus JobType = "update_order_status"
	JobDeleteOrder       JobType = "delete_order"
)

// ErrUnknownJobType — сообщение с неизвестным тегом; повторная доставка
// бессмысленна, консьюмер коммитит и пропускает такие сообщения.
var ErrUnknownJobType = errors.New("unknown job type")

// ErrMalformedJob — конверт или payload не разбирается/не согласован с тегом.
var ErrMalformedJob = errors.New("malformed job")

// CreateOrderPayload — данные для вставки заказа вместе с позициями.
type CreateOrderPayload struct {
	OrderID      string `json:"order_id"`
	CustomerName string `json:"customer_name"`
	Status       string `json:"status"`
	Items        []Item `json:"items"`
}

// UpdateStatusPayload — смена статуса существующего заказа.
type UpdateStatusPayload struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// DeleteOrderPayload — удаление заказа и его позиций.
type DeleteOrderPayload struct {
	OrderID string `json:"order_id"`
}

// Job — размеченное объединение над тремя видами записи.
// Ровно одно из полей Create/Update/Delete не nil и соответствует Type.
// На проводе job ходит конвертом {"job_id", "type", "payload"}.
type Job struct {
	JobID  string
	Type   JobType
	Create *CreateOrderPayload
	Update *UpdateStatusPayload
	Delete *DeleteOrderPayload
}

// NewCreateJob — job на создание заказа. JobID назначает публикатор.
func NewCreateJob(order *Order) Job {
	return Job{
		Type: JobCreateOrder,
		Create: &CreateOrderPayload{
			OrderID:      order.ID,
			CustomerName: order.CustomerName,
			Status:       order.Status,
			Items:        append([]Item(nil), order.Items...),
		},
	}
}

// NewUpdateStatusJob — job на смену статуса.
func NewUpdateStatusJob(orderID, status string) Job {
	return Job{
		Type:   JobUpdateOrderStatus,
		Update: &UpdateStatusPayload{OrderID: orderID, Status: status},
	}
}

// NewDeleteJob — job на удаление.
func NewDeleteJob(orderID string) Job {
	return Job{
		Type:   JobDeleteOrder,
		Delete: &DeleteOrderPayload{OrderID: orderID},
	}
}

// OrderID — id заказа из payload; известен вызывающему ещё до того,
// как job надёжно попадёт в очередь (инвариант: job_id != order_id).
func (j *Job) OrderID() string {
	switch j.Type {
	case JobCreateOrder:
		if j.Create != nil {
			return j.Create.OrderID
		}
	case JobUpdateOrderStatus:
		if j.Update != nil {
			return j.Update.OrderID
		}
	case JobDeleteOrder:
		if j.Delete != nil {
			return j.Delete.OrderID
		}
	}
	return ""
}

// jobEnvelope — проводной формат сообщения очереди.
type jobEnvelope struct {
	JobID   string          `json:"job_id"`
	Type    JobType         `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// MarshalJSON — сериализация в конверт {"job_id","type","payload"}.
func (j Job) MarshalJSON() ([]byte, error) {
	var payload any
	switch j.Type {
	case JobCreateOrder:
		payload = j.Create
	case JobUpdateOrderStatus:
		payload = j.Update
	case JobDeleteOrder:
		payload = j.Delete
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownJobType, j.Type)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: nil payload for %q", ErrMalformedJob, j.Type)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jobEnvelope{JobID: j.JobID, Type: j.Type, Payload: raw})
}

// UnmarshalJSON — разбор конверта; payload декодируется по тегу.
// Возвращает ErrUnknownJobType/ErrMalformedJob — обе ошибки консьюмер
// трактует как «пропустить навсегда».
func (j *Job) UnmarshalJSON(raw []byte) error {
	var env jobEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedJob, err)
	}

	parsed := Job{JobID: env.JobID, Type: env.Type}
	var err error
	switch env.Type {
	case JobCreateOrder:
		parsed.Create = &CreateOrderPayload{}
		err = json.Unmarshal(env.Payload, parsed.Create)
	case JobUpdateOrderStatus:
		parsed.Update = &UpdateStatusPayload{}
		err = json.Unmarshal(env.Payload, parsed.Update)
	case JobDeleteOrder:
		parsed.Delete = &DeleteOrderPayload{}
		err = json.Unmarshal(env.Payload, parsed.Delete)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownJobType, env.Type)
	}
	if err != nil {
		return fmt.Errorf("%w: payload for %q: %v", ErrMalformedJob, env.Type, err)
	}
	if parsed.OrderID() == "" {
		return fmt.Errorf("%w: empty order_id in %q payload", ErrMalformedJob, env.Type)
	}

	*j = parsed
	return nil
}

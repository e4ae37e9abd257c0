package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Gunvolt24/order-pipeline/internal/domain"
)

func TestJob_RoundTrip_Create(t *testing.T) {
	t.Parallel()

	order := &domain.Order{
		ID:           "ord-1",
		CustomerName: "John Smith",
		Status:       domain.StatusReceived,
		Items:        []domain.Item{{Name: "widget", Quantity: 2}},
	}
	job := domain.NewCreateJob(order)
	job.JobID = "job-1"

	raw, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got domain.Job
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.JobID != "job-1" || got.Type != domain.JobCreateOrder {
		t.Fatalf("envelope fields wrong: %+v", got)
	}
	if got.Create == nil || got.Create.OrderID != "ord-1" || len(got.Create.Items) != 1 {
		t.Fatalf("create payload wrong: %+v", got.Create)
	}
	if got.OrderID() != "ord-1" {
		t.Fatalf("OrderID: want ord-1, got %q", got.OrderID())
	}
}

func TestJob_Unmarshal_UnknownType(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"job_id":"j","type":"truncate_all","payload":{}}`)

	var job domain.Job
	err := json.Unmarshal(raw, &job)
	if !errors.Is(err, domain.ErrUnknownJobType) {
		t.Fatalf("want ErrUnknownJobType, got %v", err)
	}
}

func TestJob_Unmarshal_MalformedPayload(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"not json":       `{{{`,
		"payload wrong":  `{"job_id":"j","type":"update_order_status","payload":"oops"}`,
		"empty order id": `{"job_id":"j","type":"delete_order","payload":{}}`,
	}

	for name, raw := range cases {
		var job domain.Job
		err := json.Unmarshal([]byte(raw), &job)
		if !errors.Is(err, domain.ErrMalformedJob) {
			t.Fatalf("%s: want ErrMalformedJob, got %v", name, err)
		}
	}
}

func TestJob_Marshal_NilPayload(t *testing.T) {
	t.Parallel()

	job := domain.Job{JobID: "j", Type: domain.JobCreateOrder}
	if _, err := json.Marshal(job); err == nil {
		t.Fatal("expected error for nil payload, got nil")
	}
}

func TestJob_OrderID_PerVariant(t *testing.T) {
	t.Parallel()

	upd := domain.NewUpdateStatusJob("ord-2", domain.StatusShipped)
	if upd.OrderID() != "ord-2" {
		t.Fatalf("update OrderID: got %q", upd.OrderID())
	}
	del := domain.NewDeleteJob("ord-3")
	if del.OrderID() != "ord-3" {
		t.Fatalf("delete OrderID: got %q", del.OrderID())
	}
}

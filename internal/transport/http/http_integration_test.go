//go:build integration

package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cachenoop "github.com/Gunvolt24/order-pipeline/internal/cache/noop"
	"github.com/Gunvolt24/order-pipeline/internal/cache/ordercache"
	"github.com/Gunvolt24/order-pipeline/internal/domain"
	"github.com/Gunvolt24/order-pipeline/internal/queue"
	pgrepo "github.com/Gunvolt24/order-pipeline/internal/repo/postgres"
	"github.com/Gunvolt24/order-pipeline/internal/testutil"
	rest "github.com/Gunvolt24/order-pipeline/internal/transport/http"
	"github.com/Gunvolt24/order-pipeline/internal/usecase"
	"github.com/Gunvolt24/order-pipeline/pkg/logger"
)

// Полный путь записи: POST /orders → очередь → воркер → Postgres → GET /orders/:id.
// Кэш отключён (noop), поэтому 200 на GET означает строку в БД, а не overlay.
func TestHTTP_WritePipeline_TC(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
	defer cancel()

	pg, stopPG, err := testutil.StartPostgresTC(ctx)
	require.NoError(t, err)
	defer func() { _ = stopPG(context.Background()) }()
	require.NoError(t, testutil.ApplyMigrationsGoose(pg.DSN))

	kenv, stopKafka, err := testutil.StartKafkaTC(ctx, "order-write-itest")
	require.NoError(t, err)
	defer func() { _ = stopKafka(context.Background()) }()

	topic, group := testutil.UniqueTopicAndGroup(kenv.BaseTopic)
	require.NoError(t, testutil.EnsureTopic(ctx, kenv.Brokers[0], topic))

	logg, cleanup, err := logger.NewZapLogger(false)
	require.NoError(t, err)
	defer func() { _ = cleanup() }()

	cache := ordercache.NewStore(cachenoop.KV{}, logg, ordercache.Config{})
	repo := pgrepo.NewOrderRepository(pg.Pool)

	pub := queue.NewPublisher(queue.PublisherConfig{Brokers: kenv.Brokers, Topic: topic}, logg)
	defer func() { _ = pub.Close() }()

	// Воркер.
	jobSvc := usecase.NewJobService(repo, cache, logg)
	consumer := queue.NewConsumer(&queue.ConsumerConfig{
		Brokers:     kenv.Brokers,
		Topic:       topic,
		GroupID:     group,
		StartOffset: "first",
	}, jobSvc, logg)
	defer func() { _ = consumer.Close() }()

	runCtx, runCancel := context.WithCancel(ctx)
	defer runCancel()
	go func() { _ = consumer.Run(runCtx) }()

	// API.
	readSvc := usecase.NewOrderReadService(repo, cache, logg)
	writeSvc := usecase.NewOrderWriteService(pub, repo, cache, logg)
	h := rest.NewHandler(readSvc, writeSvc, logg, 5*time.Second)
	ts := httptest.NewServer(rest.NewRouter(h, ""))
	defer ts.Close()

	// POST /orders → 202 + квитанция.
	body := []byte(`{"customer_name":"Jane Doe","items":[{"name":"widget","quantity":2}]}`)
	resp, err := http.Post(ts.URL+"/orders", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var receipt domain.WriteReceipt
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&receipt))
	require.Equal(t, "queued", receipt.Status)
	require.NotEmpty(t, receipt.OrderID)
	require.NotEqual(t, receipt.OrderID, receipt.JobID)

	// Ждём, пока воркер применит job: GET начнёт отдавать 200.
	require.Eventually(t, func() bool {
		r, err := http.Get(ts.URL + "/orders/" + receipt.OrderID)
		if err != nil {
			return false
		}
		defer r.Body.Close()
		return r.StatusCode == http.StatusOK
	}, 60*time.Second, 500*time.Millisecond, "order never became readable")

	// Строка действительно в Postgres.
	got, err := repo.GetByID(ctx, receipt.OrderID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Jane Doe", got.CustomerName)
	require.Equal(t, domain.StatusReceived, got.Status)
	require.Len(t, got.Items, 1)
}

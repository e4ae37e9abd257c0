//go:generate mockgen -source=../order_repository.go -destination=./mock_order_repository.go -package=mocks
//go:generate mockgen -source=../kv_cache.go         -destination=./mock_kv_cache.go         -package=mocks
//go:generate mockgen -source=../job_publisher.go    -destination=./mock_job_publisher.go    -package=mocks
//go:generate mockgen -source=../logger.go           -destination=./mock_logger.go           -package=mocks
//go:generate mockgen -source=../order_services.go   -destination=./mock_order_services.go   -package=mocks

package mocks

// cmd/copilot-worker/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	appaws "xpilot-copilot/internal/common/aws"
	"xpilot-copilot/internal/common/camunda"
	"xpilot-copilot/internal/common/config"
	"xpilot-copilot/internal/common/database"
	apphttp "xpilot-copilot/internal/common/http"
	"xpilot-copilot/internal/common/logger"
	"xpilot-copilot/internal/common/observability"
	"xpilot-copilot/internal/copilot/audit"
	"xpilot-copilot/internal/copilot/chat"
	"xpilot-copilot/internal/copilot/command"
	"xpilot-copilot/internal/copilot/history"
	"xpilot-copilot/internal/copilot/intent"
	"xpilot-copilot/internal/copilot/knowledge"
	"xpilot-copilot/internal/copilot/llm"
	"xpilot-copilot/internal/copilot/pipeline"
	"xpilot-copilot/internal/copilot/provider"
	"xpilot-copilot/pkg/registry"

	cr "xpilot-copilot/internal/workers/copilot/chat-respond"
	ci "xpilot-copilot/internal/workers/copilot/classify-intent"
	ec "xpilot-copilot/internal/workers/copilot/execute-command"
	pc "xpilot-copilot/internal/workers/copilot/parse-command"
	pp "xpilot-copilot/internal/workers/copilot/process-prompt"
)

// worker is what every copilot job handler exposes to the process.
type worker interface {
	Register() error
	Close()
	GetTaskType() string
	IsEnabled() bool
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.Build(logger.Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cfg.Logging.Output,
		Service: cfg.App.Name,
	})
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting copilot worker...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("entityStore", cfg.EntityStore.Driver),
	)

	obs := observability.New(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint)
	defer obs.Shutdown()

	ctx := context.Background()

	checkRegistry(cfg.Registry.Path, zapLog)

	// --- Zeebe ---
	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: cfg.Camunda.UsePlaintext,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")

	// --- LLM providers ---
	providers, err := provider.NewRegistry(cfg.LLM.Providers, provider.NewConfigSecretStore(cfg.LLM.APIKeys), log)
	if err != nil {
		zapLog.Fatal("provider registry failed", zap.Error(err))
	}
	timeouts := llm.Timeouts{
		Classification: config.GetDuration(cfg.LLM.Timeouts.Classification),
		Chat:           config.GetDuration(cfg.LLM.Timeouts.Chat),
		Command:        config.GetDuration(cfg.LLM.Timeouts.Command),
	}
	completer := llm.NewClient(apphttp.NewClient(longest(timeouts)), timeouts, log)
	zapLog.Info("LLM providers loaded", zap.Int("count", len(providers.Providers())))

	// --- Entity stores ---
	dispatcher := command.NewDispatcher(log)
	closeStore, err := registerEntityRoutes(ctx, cfg, dispatcher, log, zapLog)
	if err != nil {
		zapLog.Fatal("entity store initialization failed", zap.Error(err))
	}
	defer closeStore()
	zapLog.Info("Entity routes registered", zap.Strings("entities", dispatcher.Entities()))

	deps := pipeline.Dependencies{
		Classifier: intent.NewClassifier(providers, completer, log),
		Responder:  chat.NewResponder(providers, completer, chat.Options{MaxContextChars: cfg.Chat.MaxContextChars}, log),
		Parser:     command.NewParser(providers, completer, log),
		Executor:   dispatcher,
		Logger:     log,
	}

	// --- Optional collaborators ---
	if cfg.Chat.HistoryEnabled {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		deps.History = history.NewStore(rdb.Client, history.Options{
			Size: cfg.Chat.HistorySize,
			TTL:  time.Duration(cfg.Chat.HistoryTTL) * time.Second,
		}, log)
		zapLog.Info("Chat history enabled", zap.Int("size", cfg.Chat.HistorySize))
	}

	if cfg.Knowledge.Enabled {
		var es *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		deps.Knowledge = knowledge.NewRetriever(es.Client, knowledge.Options{
			Index:            cfg.Knowledge.Index,
			TopK:             cfg.Knowledge.TopK,
			MinScore:         cfg.Knowledge.MinScore,
			MaxContextLength: cfg.Knowledge.MaxContextLength,
		}, log)
		zapLog.Info("Knowledge retrieval enabled", zap.String("index", cfg.Knowledge.Index))
	}

	if cfg.Audit.Enabled {
		snsClient, err := appaws.NewSNSClient(ctx, cfg.Audit.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		deps.Auditor = audit.NewPublisher(snsClient, cfg.Audit.TopicARN, log)
		zapLog.Info("Command audit enabled", zap.String("topic", cfg.Audit.TopicARN))
	}

	copilot := pipeline.New(deps)

	// --- Workers ---
	workers, err := buildWorkers(cfg, zeebe, copilot, deps, obs, log)
	if err != nil {
		zapLog.Fatal("worker construction failed", zap.Error(err))
	}
	for _, w := range workers {
		if err := w.Register(); err != nil {
			zapLog.Fatal("worker registration failed", zap.String("taskType", w.GetTaskType()), zap.Error(err))
		}
	}
	zapLog.Info("Copilot workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	server := newServer(cfg.App.HTTPPort, zeebe)
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.Int("port", cfg.App.HTTPPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	zapLog.Info("Copilot worker stopped gracefully")
}

func buildWorkers(cfg *config.Config, zeebe *camunda.Client, copilot *pipeline.Copilot, deps pipeline.Dependencies, obs *observability.Observability, log logger.Logger) ([]worker, error) {
	classify, err := ci.NewHandler(ci.HandlerOptions{
		AppConfig: cfg, Camunda: zeebe, Classifier: deps.Classifier, Observability: obs, Logger: log,
	})
	if err != nil {
		return nil, err
	}
	respond, err := cr.NewHandler(cr.HandlerOptions{
		AppConfig: cfg, Camunda: zeebe, Chatter: copilot, Observability: obs, Logger: log,
	})
	if err != nil {
		return nil, err
	}
	parse, err := pc.NewHandler(pc.HandlerOptions{
		AppConfig: cfg, Camunda: zeebe, Parser: deps.Parser, Observability: obs, Logger: log,
	})
	if err != nil {
		return nil, err
	}
	execute, err := ec.NewHandler(ec.HandlerOptions{
		AppConfig: cfg, Camunda: zeebe, Executor: copilot, Observability: obs, Logger: log,
	})
	if err != nil {
		return nil, err
	}
	process, err := pp.NewHandler(pp.HandlerOptions{
		AppConfig: cfg, Camunda: zeebe, Processor: copilot, Observability: obs, Logger: log,
	})
	if err != nil {
		return nil, err
	}
	return []worker{classify, respond, parse, execute, process}, nil
}

// checkRegistry warns about task types missing from the activity registry.
func checkRegistry(path string, log *zap.Logger) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		log.Warn("activity registry not loaded", zap.String("path", path), zap.Error(err))
		return
	}
	if err := reg.Validate(); err != nil {
		log.Warn("activity registry invalid", zap.String("path", path), zap.Error(err))
	}
	for _, taskType := range []string{ci.TaskType, cr.TaskType, pc.TaskType, ec.TaskType, pp.TaskType} {
		a, ok := reg.Find(taskType)
		if !ok {
			log.Warn("task type missing from activity registry", zap.String("taskType", taskType))
			continue
		}
		if !a.IsImplemented() {
			log.Warn("activity not marked implemented", zap.String("taskType", taskType), zap.String("status", a.ImplementationStatus))
		}
	}
}

func newServer(port int, zeebe *camunda.Client) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}

func longest(t llm.Timeouts) time.Duration {
	d := t.Classification
	for _, c := range []time.Duration{t.Chat, t.Command} {
		if c > d {
			d = c
		}
	}
	return d
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/tariqmb/rudud/internal/business"
	"github.com/tariqmb/rudud/internal/cache"
	"github.com/tariqmb/rudud/internal/config"
	"github.com/tariqmb/rudud/internal/db"
	"github.com/tariqmb/rudud/internal/dialect"
	"github.com/tariqmb/rudud/internal/engine"
	"github.com/tariqmb/rudud/internal/knowledge"
	"github.com/tariqmb/rudud/internal/llm"
	"github.com/tariqmb/rudud/internal/queue"
	"github.com/tariqmb/rudud/internal/server"
	"github.com/tariqmb/rudud/internal/signals"
)

var serverPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the response engine HTTP server",
	Long:  `Starts the rudud HTTP server exposing the response, dialect and provider endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if serverPort > 0 {
			cfg.Server.Port = serverPort
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("validating config: %w", err)
		}

		log := newLogger(cfg.Log)

		// Open database.
		database, err := db.Open(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()
		store := business.NewStore(database)

		// Shared Redis backs both the knowledge cache and the job queue;
		// without it both stay in-process.
		var cacheStore cache.Store = cache.NewMemory()
		var jobQueue queue.JobQueue = queue.Nop{}
		if cfg.Redis.Enabled {
			client := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err := client.Ping(cmd.Context()).Err(); err != nil {
				return fmt.Errorf("pinging redis at %s: %w", cfg.Redis.Addr, err)
			}
			cacheStore = cache.NewRedis(client)
			jobQueue = queue.NewRedisQueue(client, "rudud:jobs")
		}
		jobs := queue.NewBestEffort(jobQueue, log)

		// Providers in configured failover order.
		specs := make([]llm.ProviderSpec, len(cfg.Providers))
		for i, p := range cfg.Providers {
			specs[i] = llm.ProviderSpec{Name: p.Name, Model: p.Model, RPM: p.RPM}
		}
		providers, health := llm.BuildProviders(specs, log)
		router := llm.NewRouter(providers, health,
			time.Duration(cfg.Router.AttemptTimeoutSeconds)*time.Second, log)

		classifier := dialect.NewClassifier(jobs, log)

		// Signal detectors share the highest-priority available provider;
		// config can switch whole branches off for every request.
		var intentDetector signals.IntentDetector
		var sentimentAnalyzer signals.SentimentAnalyzer
		if len(providers) > 0 {
			model := cfg.Providers[0].Model
			if cfg.Signals.DetectIntent {
				intentDetector = signals.NewLLMIntentDetector(providers[0], model)
			}
			if cfg.Signals.AnalyzeSentiment {
				sentimentAnalyzer = signals.NewLLMSentimentAnalyzer(providers[0], model)
			}
		} else {
			log.Warn("no providers available, intent and sentiment extraction disabled")
		}
		var languageDetector signals.LanguageDetector
		if cfg.Signals.DetectLanguage {
			languageDetector = signals.ScriptLanguageDetector{}
		}
		coordinator := signals.NewCoordinator(intentDetector, sentimentAnalyzer,
			languageDetector, classifier, jobs, log)
		coordinator.SetBranchTimeout(time.Duration(cfg.Signals.BranchTimeoutSeconds) * time.Second)

		// Vector index needs the OpenAI embeddings API.
		var index knowledge.VectorIndex
		var indexer knowledge.Indexer
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			chromemIndex := knowledge.NewChromemIndex(key)
			index = chromemIndex
			indexer = chromemIndex
			if err := warmIndex(cmd.Context(), chromemIndex, store, log); err != nil {
				return fmt.Errorf("warming vector index: %w", err)
			}
		} else {
			log.Warn("OPENAI_API_KEY not set, semantic retrieval degraded to keyword fallback")
		}
		retriever := knowledge.NewRetrieverWithOptions(cacheStore, index,
			time.Duration(cfg.Knowledge.CacheTTLMinutes)*time.Minute,
			cfg.Knowledge.TopK, cfg.Knowledge.MinSimilarity, log)

		eng := engine.New(store, coordinator, retriever, router, classifier, log)

		srv := server.New(server.Config{
			Host:     cfg.Server.Host,
			Port:     cfg.Server.Port,
			AllowAll: true,
		}, eng, store, retriever, indexer, health, log)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		log.WithFields(logrus.Fields{
			"version":  Version,
			"port":     cfg.Server.Port,
			"database": cfg.Database.Path,
			"redis":    cfg.Redis.Enabled,
		}).Info("rudud starting")

		return srv.Start()
	},
}

// warmIndex loads every stored business into the vector index so semantic
// search works from the first request.
func warmIndex(ctx context.Context, indexer knowledge.Indexer, store *business.Store, log *logrus.Logger) error {
	businesses, err := store.List(ctx)
	if err != nil {
		return err
	}
	for _, biz := range businesses {
		if len(biz.KnowledgeEntries) == 0 {
			continue
		}
		if err := indexer.IndexEntries(ctx, biz.ID, biz.KnowledgeEntries); err != nil {
			return fmt.Errorf("indexing business %s: %w", biz.ID, err)
		}
		log.WithFields(logrus.Fields{
			"business_id": biz.ID,
			"entries":     len(biz.KnowledgeEntries),
		}).Debug("indexed knowledge entries")
	}
	return nil
}

func init() {
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "override the configured server port")
	rootCmd.AddCommand(serveCmd)
}

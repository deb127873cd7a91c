package cli

import (
	"github.com/spf13/cobra"

	"github.com/depexplain/depexplain/internal/server"
	"github.com/depexplain/depexplain/pkg/explain"
	"github.com/depexplain/depexplain/pkg/history"
	"github.com/depexplain/depexplain/pkg/pipeline"
)

// newServeCmd creates the serve command running the analysis HTTP API.
func newServeCmd(configFile *string) *cobra.Command {
	var (
		addr     string
		mongoURI string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis HTTP API",
		Long: `Serve the analysis pipeline over HTTP.

Endpoints:
  POST   /api/v1/analyze       analyze a requirements document
  GET    /api/v1/reports       list stored reports
  GET    /api/v1/reports/{id}  fetch a report
  DELETE /api/v1/reports/{id}  delete a report
  GET    /api/v1/rules         list conflict rules
  GET    /healthz              health check

Reports are stored in MongoDB when a URI is configured, in memory
otherwise.`,
		RunE: func(c *cobra.Command, args []string) error {
			ctx := c.Context()
			logger := loggerFromContext(ctx)

			cfg, err := loadConfig(*configFile)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if mongoURI != "" {
				cfg.Server.MongoURI = mongoURI
			}

			table, err := loadRules(cfg.Rules, nil)
			if err != nil {
				return err
			}

			backend := newCacheBackend(cfg.Cache, logger)
			defer backend.Close()

			provider, closeProvider, err := newProvider(ctx, cfg, backend, logger)
			if err != nil {
				return err
			}
			defer closeProvider()

			engine := explain.New(
				explain.WithProvider(provider),
				explain.WithTimeout(cfg.LLM.Timeout.Duration),
			)
			runner := pipeline.NewRunner(table, engine, logger)

			var store history.Store
			if cfg.Server.MongoURI != "" {
				store, err = history.NewMongoStore(ctx, cfg.Server.MongoURI, cfg.Server.MongoDatabase)
				if err != nil {
					return err
				}
				logger.Info("report history in mongodb")
			} else {
				store = history.NewMemoryStore()
				logger.Info("report history in memory")
			}

			srv := server.New(runner, store, logger)
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB URI for report history")

	return cmd
}

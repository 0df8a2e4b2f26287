package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/mindwave/internal/api"
	"github.com/san-kum/mindwave/internal/chat"
	"github.com/san-kum/mindwave/internal/storage"
)

var (
	addr    string
	migrate bool
)

func serveCommand() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the http and websocket api",
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&migrate, "migrate", false, "apply the postgres schema before serving")
	return serveCmd
}

func serve(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = addr
	}

	if migrate {
		if cfg.Store.Driver != "postgres" {
			return fmt.Errorf("--migrate needs the postgres store")
		}
		pool, err := storage.ConnectPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return err
		}
		err = storage.Migrate(ctx, pool)
		pool.Close()
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logger.Info("schema applied")
	}

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	gamesSvc := newGameService(st)
	chatSvc := chat.NewService(st, chat.NewStaticResponder(rand.New(rand.NewSource(time.Now().UnixNano()))), chat.Options{
		ReplyDelay: cfg.Chat.ReplyDelay,
		Logger:     logger,
	})

	rdb := storage.ConnectRedis(cfg.Store.RedisAddr, cfg.Store.RedisPassword)
	if rdb != nil {
		defer rdb.Close()
	}

	h := &api.Handler{
		Chat:   chatSvc,
		Games:  gamesSvc,
		Hub:    api.NewHub(rdb, logger),
		Logger: logger,
	}
	return api.NewServer(cfg.Server, h).ListenAndServe(ctx)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"goboard/internal/model"
	web "goboard/internal/server"
	"goboard/internal/service"
	"goboard/internal/session"
	"goboard/internal/store"
)

var (
	logger      *zap.Logger
	addr        string
	backend     string
	postgresURL string
	badgerPath  string
	redisAddr   string
)

var rootCmd = &cobra.Command{
	Use:   "boardd",
	Short: "boardd - a discussion board backend",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		stores, err := openStores()
		if err != nil {
			logger.Fatal("Failed to init store", zap.Error(err))
		}
		defer stores.Close()

		sessions, err := session.NewManager(redisAddr, session.DefaultTTL)
		if err != nil {
			logger.Fatal("Failed to init sessions", zap.Error(err))
		}
		defer sessions.Close()

		srv := web.NewServer(
			service.NewArticleService(stores.Articles, stores.Replies),
			service.NewReplyService(stores.Articles, stores.Replies),
			service.NewUserService(stores.Users),
			sessions,
			logger,
		)

		go func() {
			<-sigChan
			logger.Info("Shutting down...")
			cancel()
		}()

		go func() {
			if err := srv.Start(addr); err != nil {
				logger.Error("Server stopped", zap.Error(err))
				cancel()
			}
		}()

		<-ctx.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("Shutdown failed", zap.Error(err))
		}
		logger.Info("Goodbye!")
	},
}

var postCmd = &cobra.Command{
	Use:   "post [writer] [title] [contents]",
	Short: "Post an article directly to the store",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		stores, err := openStores()
		if err != nil {
			logger.Fatal("Failed to init store", zap.Error(err))
		}
		defer stores.Close()

		article, err := stores.Articles.Save(context.Background(),
			model.NewArticle(args[0], args[1], args[2]))
		if err != nil {
			logger.Fatal("Failed to save article", zap.Error(err))
		}

		logger.Info("Article posted",
			zap.Int64("id", article.ID),
			zap.String("writer", article.Writer),
			zap.String("title", article.Title))
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every article, reply and user",
	Run: func(cmd *cobra.Command, args []string) {
		stores, err := openStores()
		if err != nil {
			logger.Fatal("Failed to init store", zap.Error(err))
		}
		defer stores.Close()

		ctx := context.Background()
		for name, wipe := range map[string]func(context.Context) error{
			"replies":  stores.Replies.DeleteAll,
			"articles": stores.Articles.DeleteAll,
			"users":    stores.Users.DeleteAll,
		} {
			if err := wipe(ctx); err != nil {
				logger.Fatal("Reset failed", zap.String("store", name), zap.Error(err))
			}
		}
		logger.Info("Stores cleared")
	},
}

func openStores() (*store.Stores, error) {
	switch backend {
	case "memory":
		return store.NewMemoryStores(), nil
	case "badger":
		return store.NewBadgerStores(badgerPath)
	case "postgres":
		url := postgresURL
		if url == "" {
			url = os.Getenv("POSTGRES_URL")
		}
		if url == "" {
			return nil, fmt.Errorf("postgres backend needs --postgres-url or $POSTGRES_URL")
		}
		return store.NewPostgresStores(url)
	default:
		return nil, fmt.Errorf("unknown backend %q", backend)
	}
}

func main() {
	var err error
	logger, err = zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	rootCmd.PersistentFlags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	rootCmd.PersistentFlags().StringVar(&backend, "store", "badger", "Storage backend: memory, badger or postgres")
	rootCmd.PersistentFlags().StringVar(&postgresURL, "postgres-url", "", "Postgres connection URL (falls back to $POSTGRES_URL)")
	rootCmd.PersistentFlags().StringVar(&badgerPath, "badger", "./board-data", "Path to BadgerDB data directory")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis", "localhost:6379", "Address of Redis server")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(resetCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cfoust/uno/pkg/config"
	"github.com/cfoust/uno/pkg/events"
	"github.com/cfoust/uno/pkg/ingress"
	"github.com/cfoust/uno/pkg/room"
	"github.com/cfoust/uno/pkg/server"
	"github.com/cfoust/uno/pkg/stats"
	"github.com/cfoust/uno/pkg/utils"
	"github.com/cfoust/uno/pkg/version"

	"github.com/rs/zerolog/log"
)

func serve(configs []string) error {
	config, err := config.Process(configs)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	serverConfig := config.Server
	log.Info().
		Str("version", version.Version).
		Str("commit", version.GitCommit).
		Strs("configs", configs).
		Msg("starting uno")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	topic := utils.NewTopic[events.Event]("events")

	if serverConfig.DBPath != "" {
		db, err := stats.InitDB(serverConfig.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open stats database: %w", err)
		}

		go stats.NewStore(db).Poll(ctx, topic.Subscribe())
		log.Info().Str("path", serverConfig.DBPath).Msg("recording match history")
	}

	if serverConfig.Redis.Address != "" {
		redisConfig := serverConfig.Redis
		publisher := events.NewRedisPublisher(events.RedisSettings{
			Address:  redisConfig.Address,
			Password: redisConfig.Password,
			DB:       redisConfig.DB,
			Prefix:   redisConfig.Prefix,
		})
		defer publisher.Close()

		err := publisher.Ping(ctx)
		if err != nil {
			log.Warn().Err(err).Str("address", redisConfig.Address).Msg("redis is not reachable yet")
		}

		go publisher.Poll(ctx, topic.Subscribe())
		log.Info().Str("address", redisConfig.Address).Msg("publishing events to redis")
	}

	game := serverConfig.Game
	registry := server.NewRegistry(room.Settings{
		MaxPlayers:   game.MaxPlayers,
		HandSize:     game.HandSize,
		WinningScore: game.WinningScore,
	}, topic)

	uno := server.New(registry, serverConfig.MessagesPerSecond)

	errc := make(chan error, 2)

	tcpConfig := serverConfig.Ingress.TCP
	tcpIngress := ingress.NewTCPIngress(uno.Handle)
	err = tcpIngress.Listen(tcpConfig.Host, tcpConfig.Port)
	if err != nil {
		return fmt.Errorf("failed to bind TCP port: %w", err)
	}

	go func() {
		errc <- tcpIngress.Serve(ctx)
	}()

	webConfig := serverConfig.Ingress.Web
	wsIngress := ingress.NewWSIngress(uno.Handle)
	if webConfig.Port != 0 {
		go func() {
			errc <- wsIngress.Serve(ctx, webConfig.Host, webConfig.Port)
		}()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errc:
		log.Error().Err(err).Msg("failed to serve")
	case sig := <-sigs:
		log.Info().Msgf("terminating: %v", sig)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	wsIngress.Shutdown(shutdownCtx)

	return nil
}

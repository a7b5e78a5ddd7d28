package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ForeverZi/wsecho"
	"github.com/ForeverZi/wsecho/config"
	"github.com/ForeverZi/wsecho/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if err := log.Setup(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, "log:", err)
		os.Exit(1)
	}
	defer log.Clean()

	s := wsecho.NewServer(cfg.PublicDir, log.New())
	log.Sugar.Infof("wsecho running at localhost:%d", cfg.Port)
	server := s.ListenAndServe(cfg.Addr())

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	<-quitChan
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Sugar.Errorw("shutdown failed", "err", err)
	} else {
		log.Sugar.Info("server stopped")
	}
	s.Close()
}

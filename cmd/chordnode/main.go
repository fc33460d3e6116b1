// cmd/chordnode is the entrypoint for a single ring peer.
//
// Configuration is entirely via flags so a single binary can be launched
// as any peer in the ring, optionally bootstrapping into an existing one.
//
// Example — start a 3-peer ring:
//
//	./chordnode --port 8080
//	./chordnode --port 8081 --entry localhost:8080
//	./chordnode --port 8082 --entry localhost:8080
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chordkv/internal/api"
	"chordkv/internal/ring"
	"chordkv/internal/store"

	"github.com/gin-gonic/gin"
)

func main() {
	port := flag.Int("p", 8080, "Listen port")
	flag.IntVar(port, "port", 8080, "Listen port (alias of -p)")
	entry := flag.String("e", "", "host:port of an existing ring member to join through")
	flag.StringVar(entry, "entry", "", "host:port of an existing ring member to join through (alias of -e)")
	dieAfter := flag.Float64("die-after-seconds", 1200, "self-terminate after this many seconds")
	flag.Parse()

	addr := fmt.Sprintf("localhost:%d", *port)

	s := store.New()
	peer := ring.New(addr, s)

	if *entry != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := peer.JoinRing(ctx, *entry); err != nil {
			cancel()
			log.Fatalf("join %s: %v", *entry, err)
		}
		cancel()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(api.Logger(), api.Recovery(), api.RequestID())

	handler := api.NewHandler(peer)
	handler.Register(router)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Node %s got successor %s and predecessor %s and own key %s, listening on :%d",
			addr, peer.Successor().Address, peer.Predecessor().Address, peer.Key(), *port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	dieTimer := time.NewTimer(time.Duration(*dieAfter * float64(time.Second)))
	defer dieTimer.Stop()

	select {
	case <-quit:
		log.Println("received termination signal, shutting down", addr)
	case <-dieTimer.C:
		log.Println("die-after-seconds elapsed, shutting down", addr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}

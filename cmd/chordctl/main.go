// cmd/chordctl is a batch driver for exercising a ring of already-running
// chordnode processes. It is a thin CLI wrapper over internal/client, not a
// participant in the ring protocol itself.
//
// Usage:
//
//	chordctl join-all nodes.txt
//	chordctl put mykey "hello world" --server localhost:8080
//	chordctl get mykey                --server localhost:8080
//	chordctl leave                    --server localhost:8080
//	chordctl sim-crash                --server localhost:8080
//	chordctl sim-recover               --server localhost:8080
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"chordkv/internal/client"

	"github.com/spf13/cobra"
)

var (
	serverAddr string
	timeout    time.Duration
)

func main() {
	root := &cobra.Command{
		Use:   "chordctl",
		Short: "batch driver and CLI client for a chordkv ring",
	}

	root.PersistentFlags().StringVarP(&serverAddr, "server", "s",
		"localhost:8080", "peer address (host:port) to talk to")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second,
		"HTTP request timeout")

	root.AddCommand(joinAllCmd(), putCmd(), getCmd(), leaveCmd(), simCrashCmd(), simRecoverCmd(), neighborsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// ─── join-all ───────────────────────────────────────────────────────────────

// joinAllCmd reads a newline-delimited file of host:port entries and
// sequentially joins each peer after the first to its predecessor in the
// file, per spec.md §6.3's batch-seeding procedure.
func joinAllCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join-all <node-list-file>",
		Short: "join every peer listed in a file, one after another",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes, err := readNodeList(args[0])
			if err != nil {
				return err
			}
			if len(nodes) == 0 {
				return fmt.Errorf("node list %s is empty", args[0])
			}

			c := client.New(timeout)
			ctx := context.Background()
			start := time.Now()
			for i := 1; i < len(nodes); i++ {
				if err := c.Join(ctx, nodes[i], nodes[i-1]); err != nil {
					return fmt.Errorf("join %s through %s: %w", nodes[i], nodes[i-1], err)
				}
			}
			fmt.Printf("joined %d peers in %s\n", len(nodes), time.Since(start))
			return nil
		},
	}
}

func readNodeList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var nodes []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		nodes = append(nodes, line)
	}
	return nodes, scanner.Err()
}

// ─── storage ────────────────────────────────────────────────────────────────

func putCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <key> <value>",
		Short: "store a key-value pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(timeout)
			return c.Put(context.Background(), serverAddr, args[0], []byte(args[1]))
		},
	}
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "retrieve a value by key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(timeout)
			value, err := c.Get(context.Background(), serverAddr, args[0])
			if err == client.ErrNotFound {
				fmt.Printf("key %q not found\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Println(string(value))
			return nil
		},
	}
}

// ─── ring membership / test hooks ───────────────────────────────────────────

func leaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "make the peer gracefully leave the ring",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(timeout)
			return c.Leave(context.Background(), serverAddr)
		},
	}
}

func simCrashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sim-crash",
		Short: "make the peer start simulating a crash",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(timeout)
			return c.SimCrash(context.Background(), serverAddr)
		},
	}
}

func simRecoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sim-recover",
		Short: "clear the peer's simulated-crash flag and rejoin",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(timeout)
			return c.SimRecover(context.Background(), serverAddr)
		},
	}
}

func neighborsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "neighbors",
		Short: "print the peer's successor and predecessor addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(timeout)
			neighbors, err := c.Neighbors(context.Background(), serverAddr)
			if err != nil {
				return err
			}
			if len(neighbors) == 0 {
				fmt.Println("(singleton ring)")
				return nil
			}
			fmt.Printf("successor:   %s\npredecessor: %s\n", neighbors[0], neighbors[1])
			return nil
		},
	}
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ForeverZi/wsecho/wsclient"
)

func main() {
	var (
		rawURL  string
		headers []string
	)
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Send stdin lines to a WebSocket server and print what comes back",
		Long: "Each line read from stdin is sent as one text message. " +
			"Sending \"term\" to wsecho makes the server drop the connection.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			header, err := parseHeaders(headers)
			if err != nil {
				return err
			}
			return run(cmd.Context(), rawURL, header)
		},
	}
	cmd.Flags().StringVarP(&rawURL, "url", "u", "ws://localhost:8080/", "server url (ws:// or wss://)")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "extra handshake header as key:value, repeatable")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func parseHeaders(kvs []string) (http.Header, error) {
	header := http.Header{}
	for _, kv := range kvs {
		k, v, ok := strings.Cut(kv, ":")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("bad header %q, want key:value", kv)
		}
		header.Add(strings.TrimSpace(k), strings.TrimSpace(v))
	}
	return header, nil
}

func run(ctx context.Context, rawURL string, header http.Header) error {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	c, err := wsclient.Connect(dialCtx, rawURL, header)
	if err != nil {
		return err
	}
	defer c.Disconnect()

	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			if err := c.SendText(sc.Text()); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return
			}
		}
		c.Disconnect()
	}()

	for ev := range c.Events() {
		switch ev.Type {
		case wsclient.EventText:
			fmt.Println(ev.Text)
		case wsclient.EventBinary:
			fmt.Printf("<%d bytes>\n", len(ev.Data))
		case wsclient.EventDisconnect:
			if ev.Err != nil {
				fmt.Fprintln(os.Stderr, "disconnected:", ev.Err)
			} else {
				fmt.Fprintln(os.Stderr, "disconnected")
			}
		default:
			fmt.Fprintln(os.Stderr, ev.Type)
		}
	}
	return nil
}

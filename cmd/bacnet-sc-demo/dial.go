package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/momentics/bacnet-sc/scconfig"
	"github.com/momentics/bacnet-sc/scconn"
	"github.com/momentics/bacnet-sc/wsbridge"
)

func dialCmd() *cobra.Command {
	var url string
	var pingInterval time.Duration

	cmd := &cobra.Command{
		Use:   "dial",
		Short: "Run as an initiator, dialing a peer and exchanging NPDU payloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				return fmt.Errorf("--url is required")
			}

			cfg, cerr := scconfig.Load(configFile)
			if cerr != nil {
				return fmt.Errorf("load config: %w", cerr)
			}
			cfg.Role = scconn.RoleInitiator

			dialer := wsbridge.NewDialer(cfg.ConnectTimeout)
			sctx, ierr := scconn.NewInitiatorContext(*cfg, dialer, nil)
			if ierr != nil {
				return fmt.Errorf("build initiator context: %w", ierr)
			}
			defer sctx.Close()
			go sctx.Run()

			conn, derr := sctx.Connect(url)
			if derr != nil {
				return fmt.Errorf("connect: %w", derr)
			}
			log.Printf("connected to vmac=%s uuid=%s", conn.PeerVMAC(), conn.PeerUUID())

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			go recvLoop(conn)

			ticker := time.NewTicker(pingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-sigCh:
					log.Printf("shutdown signal received")
					if err := conn.Disconnect(); err != nil {
						log.Printf("disconnect: %v", err)
					}
					return nil
				case <-ticker.C:
					payload := []byte(fmt.Sprintf("demo-npdu-%d", time.Now().Unix()))
					if _, serr := conn.Send(payload); serr != nil {
						log.Printf("send failed, connection closed: %v", serr)
						return nil
					}
				}
			}
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "wss:// URL of the peer to dial")
	cmd.Flags().DurationVar(&pingInterval, "send-interval", 10*time.Second, "interval between demo NPDU payloads")
	return cmd
}

func recvLoop(conn *scconn.Connection) {
	buf := make([]byte, 4096)
	for {
		n, err := conn.Recv(nil, buf, 30*time.Second)
		if err != nil {
			log.Printf("connection closed: %v", err)
			return
		}
		if n == 0 {
			continue
		}
		log.Printf("npdu received: %d bytes", n)
	}
}

package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/momentics/bacnet-sc/scconfig"
	"github.com/momentics/bacnet-sc/scconn"
	"github.com/momentics/bacnet-sc/scmetrics"
	"github.com/momentics/bacnet-sc/wsbridge"
)

func serveCmd() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run as an acceptor, binding a port and accepting inbound connections",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cerr := scconfig.Load(configFile)
			if cerr != nil {
				return fmt.Errorf("load config: %w", cerr)
			}
			cfg.Role = scconn.RoleAcceptor

			hub := wsbridge.NewHub()
			if err := hub.Start(cfg.Protocol, cfg.Port, cfg.Certificates); err != nil {
				return fmt.Errorf("start listener: %w", err)
			}
			defer hub.Stop()

			var recorder scmetrics.Recorder = scmetrics.NoopRecorder{}
			if metricsAddr != "" {
				prom := scmetrics.NewPrometheusRecorder()
				recorder = prom
				go func() {
					log.Printf("metrics listening on %s", metricsAddr)
					if err := http.ListenAndServe(metricsAddr, prom.Handler()); err != nil {
						log.Printf("metrics server: %v", err)
					}
				}()
			}

			sctx, aerr := scconn.NewAcceptorContext(*cfg, hub, recorder)
			if aerr != nil {
				return fmt.Errorf("build acceptor context: %w", aerr)
			}
			go sctx.Run()
			defer sctx.Close()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			log.Printf("acceptor listening on port %d, protocol %s, vmac %s", cfg.Port, cfg.Protocol, cfg.LocalVMAC)

			go acceptLoop(sctx, sigCh)
			<-sigCh
			log.Printf("shutdown signal received")
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (disabled if empty)")
	return cmd
}

func acceptLoop(sctx *scconn.Context, stop <-chan os.Signal) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		conn, err := sctx.Accept(5 * time.Second)
		if err != nil {
			continue
		}
		log.Printf("accepted connection from vmac=%s uuid=%s", conn.PeerVMAC(), conn.PeerUUID())
		go serveConnection(conn)
	}
}

func serveConnection(conn *scconn.Connection) {
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
		log.Printf("npdu from %s: %d bytes", conn.PeerVMAC(), n)
	}
}

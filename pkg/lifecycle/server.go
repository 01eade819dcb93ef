// Package lifecycle pkg/lifecycle/server.go runs a service with its health
// and HTTP endpoints until it finishes, fails or is signaled.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/domhub/hubmoni/pkg/grpc"
	"github.com/domhub/hubmoni/pkg/logger"
)

const (
	MaxRecvSize       = 4 * 1024 * 1024 // 4MB
	MaxSendSize       = 4 * 1024 * 1024 // 4MB
	ShutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

// Service defines the interface that all services must implement. Start
// blocks until the service is done or ctx is canceled.
type Service interface {
	Start(context.Context) error
	Stop(context.Context) error
}

// ServerOptions holds configuration for running a service.
type ServerOptions struct {
	ServiceName string
	Service     Service

	// ListenAddr is the gRPC health endpoint; empty disables it.
	ListenAddr string

	// HTTPAddr serves HTTPHandler; empty disables it.
	HTTPAddr    string
	HTTPHandler http.Handler

	Logger logrus.FieldLogger
}

// RunServer starts a service with the provided options and handles lifecycle.
// A service that returns nil from Start ends the run cleanly.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	log.WithField("service", opts.ServiceName).Info("*** Starting service")

	errChan := make(chan error, 3)
	doneChan := make(chan struct{})

	var grpcServer *grpc.Server

	if opts.ListenAddr != "" {
		grpcServer = setupGRPCServer(opts.ListenAddr, opts.ServiceName, log)

		go func() {
			if err := grpcServer.Start(); err != nil {
				errChan <- fmt.Errorf("gRPC server: %w", err)
			}
		}()
	}

	var httpServer *http.Server

	if opts.HTTPAddr != "" && opts.HTTPHandler != nil {
		httpServer = &http.Server{
			Addr:              opts.HTTPAddr,
			Handler:           opts.HTTPHandler,
			ReadHeaderTimeout: readHeaderTimeout,
			BaseContext:       func(net.Listener) context.Context { return ctx },
		}

		go func() {
			log.WithField("addr", opts.HTTPAddr).Info("Starting HTTP server")

			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- fmt.Errorf("HTTP server: %w", err)
			}
		}()
	}

	go func() {
		if err := opts.Service.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errChan <- err
			return
		}

		close(doneChan)
	}()

	return handleShutdown(ctx, cancel, &shutdown{
		grpc:    grpcServer,
		http:    httpServer,
		svc:     opts.Service,
		errChan: errChan,
		done:    doneChan,
		log:     log,
	})
}

func setupGRPCServer(addr, serviceName string, log logrus.FieldLogger) *grpc.Server {
	grpcServer := grpc.NewServer(addr,
		grpc.WithMaxRecvSize(MaxRecvSize),
		grpc.WithMaxSendSize(MaxSendSize),
		grpc.WithLogger(log),
	)

	if err := grpcServer.RegisterHealthServer(); err != nil {
		log.WithError(err).Warn("Failed to register health server")
	}

	grpcServer.SetServing(serviceName, true)

	return grpcServer
}

type shutdown struct {
	grpc    *grpc.Server
	http    *http.Server
	svc     Service
	errChan chan error
	done    chan struct{}
	log     logrus.FieldLogger
}

func handleShutdown(ctx context.Context, cancel context.CancelFunc, s *shutdown) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	defer signal.Stop(sigChan)

	var runErr error

	select {
	case sig := <-sigChan:
		s.log.WithField("signal", sig.String()).Info("Received signal, initiating shutdown")
	case err := <-s.errChan:
		s.log.WithError(err).Error("Received error, initiating shutdown")
		runErr = fmt.Errorf("service error: %w", err)
	case <-s.done:
		s.log.Info("Service finished, shutting down")
	case <-ctx.Done():
		s.log.Info("Context canceled, initiating shutdown")
		runErr = ctx.Err()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()

	cancel()

	if s.grpc != nil {
		s.grpc.Stop(shutdownCtx)
	}

	if s.http != nil {
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			s.log.WithError(err).Warn("HTTP server shutdown")
		}
	}

	if err := s.svc.Stop(shutdownCtx); err != nil {
		s.log.WithError(err).Error("Error during service shutdown")

		return errors.Join(runErr, fmt.Errorf("shutdown error: %w", err))
	}

	return runErr
}

package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"go.uber.org/zap"
)

// TCPServer 接收设备端通过 TCP 连续发送的 JSON 帧
type TCPServer struct {
	addr      string
	processor *Processor
	logger    *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closed   bool
	wg       sync.WaitGroup
}

func NewTCPServer(addr string, processor *Processor, logger *zap.Logger) *TCPServer {
	return &TCPServer{
		addr:      addr,
		processor: processor,
		logger:    logger,
		conns:     make(map[net.Conn]struct{}),
	}
}

// Listen 绑定监听地址
func (s *TCPServer) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	s.logger.Info("Ingest TCP server listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// Addr 实际监听地址（端口为 0 时用于测试）
func (s *TCPServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve 阻塞接受连接，直到 Stop 或 ctx 结束
func (s *TCPServer) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("tcp server not listening")
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.Stop()
		case <-done:
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = conn.Close()
			return nil
		}
		s.conns[conn] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()

		go func() {
			defer s.wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

// Start Listen + Serve
func (s *TCPServer) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Stop 关闭监听和所有连接，等待处理协程退出
func (s *TCPServer) Stop() error {
	s.mu.Lock()
	s.closed = true
	var err error
	if s.listener != nil {
		err = s.listener.Close()
		if errors.Is(err, net.ErrClosed) {
			err = nil
		}
	}
	for c := range s.conns {
		_ = c.Close()
	}
	s.mu.Unlock()

	s.wg.Wait()
	return err
}

func (s *TCPServer) handleConn(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()
	s.logger.Info("Device connected", zap.String("remote", remote))

	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		s.logger.Info("Device disconnected", zap.String("remote", remote))
	}()

	dec := json.NewDecoder(conn)
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return
			}
			// 语法错误后无法重新同步，关闭连接
			s.logger.Warn("Failed to decode frame, closing connection",
				zap.String("remote", remote),
				zap.Error(err),
			)
			return
		}

		key, err := s.processor.HandleRaw(ctx, raw)
		if err != nil {
			s.logger.Warn("Frame rejected", zap.String("remote", remote), zap.Error(err))
			continue
		}
		s.logger.Debug("Frame stored", zap.String("remote", remote), zap.String("key", key))
	}
}

package api

import (
	classservice "github.com/burenotti/go_classes_backend/internal/app/classes"
	"log/slog"
	"net"
	"strconv"
)

type Option func(*Server)

func Addr(host string, port int) Option {
	return func(s *Server) {
		s.addr = net.JoinHostPort(host, strconv.Itoa(port))
	}
}

func Logger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

func ClassService(service *classservice.Service) Option {
	return func(s *Server) {
		s.classService = service
	}
}

func QueryService(service *classservice.QueryService) Option {
	return func(s *Server) {
		s.queryService = service
	}
}

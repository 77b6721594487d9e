package sms

import (
	"context"
	"log/slog"
)

// LoggingSender stands in for a real SMS gateway in local and test
// environments. It logs delivery intent without the code itself, so log
// aggregation never captures live credentials.
type LoggingSender struct {
	Logger *slog.Logger

	// EchoCode additionally logs the plaintext code at Debug level for
	// local development only. Never enable it in production.
	EchoCode bool
}

func (s LoggingSender) SendOtp(_ context.Context, phone, code string) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("otp dispatch requested",
		"event", "sms_otp_dispatched",
		"module", "identity-access/auth-service",
		"layer", "adapter",
		"phone", phone,
	)
	if s.EchoCode {
		logger.Debug("otp code echo",
			"event", "sms_otp_echo",
			"module", "identity-access/auth-service",
			"layer", "adapter",
			"phone", phone,
			"code", code,
		)
	}
	return nil
}
